package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// cliArgs holds the parsed command line. Empty strings and false mean
// "not given", so config file values apply.
type cliArgs struct {
	configPath string
	outDir     string
	color      string
	style      string
	lang       string
	rounded    bool
	contents   bool
	log        bool
	positional []string
}

// valueFlags take the next argument as their value.
var valueFlags = map[string]string{
	"--config": "a file path",
	"-c":       "a file path",
	"--out":    "a directory",
	"-o":       "a directory",
	"--color":  "a hex color",
	"-b":       "a hex color",
	"--style":  "plain or rounded",
	"--lang":   "a language tag",
}

func parseArgs(args []string) (cliArgs, error) {
	var a cliArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if hint, ok := valueFlags[arg]; ok {
			if i+1 >= len(args) {
				return a, fmt.Errorf("%s requires %s", arg, hint)
			}
			v := args[i+1]
			i++
			switch arg {
			case "--config", "-c":
				a.configPath = v
			case "--out", "-o":
				a.outDir = v
			case "--color", "-b":
				a.color = v
			case "--style":
				a.style = v
			case "--lang":
				a.lang = v
			}
			continue
		}
		switch arg {
		case "--rounded", "-r":
			a.rounded = true
		case "--contents":
			a.contents = true
		case "--log":
			a.log = true
		case "--":
			a.positional = append(a.positional, args[i+1:]...)
			return a, nil
		default:
			if len(arg) > 1 && arg[0] == '-' && !isCommand(arg) {
				return a, fmt.Errorf("unknown option %s", arg)
			}
			a.positional = append(a.positional, arg)
		}
	}
	return a, nil
}

// isCommand reports whether a dash-prefixed argument is positional: a
// command alias or a (negative) number meant as the icon size.
func isCommand(arg string) bool {
	switch arg {
	case "-h", "--help", "-V", "--version":
		return true
	}
	_, err := strconv.Atoi(arg)
	return err == nil
}

func main() {
	a, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'splash help' for usage.\n")
		os.Exit(1)
	}

	if len(a.positional) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch a.positional[0] {
	case "help", "-h", "--help":
		printUsage()
	case "version", "-V", "--version":
		printVersion()
	case "history":
		historyCmd(a, a.positional[1:])
	default:
		runGenerate(a)
	}
}

// fatal prints an error message to stderr and exits with code 1.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func printVersion() {
	fmt.Printf("splash %s (built %s, %s/%s)\n", version, buildDate, runtime.GOOS, runtime.GOARCH)
}

func printUsage() {
	fmt.Printf("splash %s - Generate iOS splash screens from an app icon\n", version)
	fmt.Println(`
Usage:
  splash [options] <icon_path> [icon_size]
  splash history [count | clear | clean <days>]

Options:
  --rounded, -r          Rounded corners with a drop shadow
  --style <name>         plain (default) or rounded
  --out, -o <dir>        Output directory (must exist)
  --color, -b <#hex>     Background color (default: #8b5cf6)
  --lang <tag>           Message language: en, ja (default: system)
  --config, -c <path>    Path to splash-config.json
  --contents             Also write Contents.json for the image set
  --log                  Record the run in the history database

Commands:
  history [count]        Show the most recent runs (default 10)
  history clear          Delete the run history
  history clean <days>   Delete runs older than <days> days
  version, -V            Show version and build date
  help, -h, --help       Show this help message

Output:
  <project root>/ios/App/App/Assets.xcassets/Splash.imageset
    splash-2732x2732-2.png   splash-2732x2732-1.png   splash-2732x2732.png
  The project root is the nearest directory holding capacitor.config.ts,
  capacitor.config.json or package.json.

Config resolution:
  1. --config <path>                       (explicit)
  2. splash-config.json in the project root
  3. ~/.config/splash/splash-config.json   (user default)

Examples:
  splash resources/icon.png              Plain icon at 1024x1024
  splash resources/icon.png 768          Plain icon at 768x768
  splash -r resources/icon.png           Rounded icon with shadow
  splash -b "#000000" -o out icon.svg    Black background, custom output`)
}
