//go:build !fractaldebug

package fractal

// debugBuild enables fail-fast checks for programming errors such as
// publishing a tile twice. Build with -tags fractaldebug to turn it on.
const debugBuild = false
