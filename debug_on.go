//go:build fractaldebug

package fractal

const debugBuild = true
