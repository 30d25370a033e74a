// Package version reports the build version of foremit binaries.
//
// Values are injected at link time and fall back to the VCS stamps Go
// records in the binary:
//
//	go build -ldflags "-X github.com/kbukum/foremit/version.Version=1.0.0" ./cmd/foremit
package version
