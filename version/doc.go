// Package version reports the library build and derives the User-Agent
// sent with API requests.
//
// Version and commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/vimeonet/version.Version=1.2.0"
package version
