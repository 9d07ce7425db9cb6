// Package version exposes the build version of consul-service.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/consul-service/version.Version=1.0.0" ./cmd/consul-service
//
// Values left empty are filled from the VCS stamps Go embeds in the binary.
// The /info endpoint, the version command and the APP_VERSION fallback all
// read from here.
package version
