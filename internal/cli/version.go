package cli

// Version is set at build time with -ldflags "-X github.com/frusal/deploy-my-schema/internal/cli.Version=...".
var Version = "dev"
