//go:build ignore

// build.go - shiftcal build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, shiftscan, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "shiftcal"

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// key = source dir under cmd/, value = output name without extension
	executables = map[string]string{
		"web":       "shiftcal",
		"shiftscan": "shiftscan",
	}

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s; run from the repository root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("os", runtime.GOOS, "Target operating system")
	goarch := flag.String("arch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{Verbose: *verbose, GOOS: *goos, GOARCH: *goarch}

	switch *target {
	case "all":
		buildAll(ctx)
	case "web", "shiftscan":
		buildExecutable(*target, ctx)
	case "test":
		runTests(ctx.Verbose)
	case "clean":
		clean()
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "          shiftcal - Build System          " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func buildAll(ctx *BuildContext) {
	printInfo("Building all components...")
	for _, name := range []string{"web", "shiftscan"} {
		buildExecutable(name, ctx)
	}
}

func buildExecutable(name string, ctx *BuildContext) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, ctx.GOOS, ctx.GOARCH))
	outputPath := filepath.Join(distDir, exeName)

	ldflags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s -X %s/pkg/contracts.GitCommit=%s",
		module, time.Now().UTC().Format(time.RFC3339), module, gitCommit())

	args := []string{"build", "-trimpath", "-ldflags", ldflags, "-o", outputPath, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		return
	}
	printSuccess("Build artifacts cleaned")
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func buildRelease(ctx *BuildContext) {
	printInfo("Building release version...")
	clean()
	buildAll(ctx)

	content := fmt.Sprintf("%s %s/%s\nBuilt: %s\nCommit: %s\n",
		module, ctx.GOOS, ctx.GOARCH, time.Now().Format("2006-01-02 15:04:05"), gitCommit())
	if err := os.WriteFile(filepath.Join(distDir, "VERSION.txt"), []byte(content), 0644); err != nil {
		printError(fmt.Sprintf("Failed to write VERSION.txt: %v", err))
		os.Exit(1)
	}
	printSuccess("Release build completed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all          Build the server and the CLI (default)")
	fmt.Println("  web          Build the HTTP server")
	fmt.Println("  shiftscan    Build the command line scanner")
	fmt.Println("  test         Run all tests with the race detector")
	fmt.Println("  clean        Remove dist/")
	fmt.Println("  release      Clean, build all and write dist/VERSION.txt")
}
