package docqa

// Version is set at build time with -ldflags "-X github.com/a-h/docqa.Version=...".
var Version = "dev"
