package build

var (
	Name    = "blackfmt"
	Version = "v0.1.0+dev"
)
