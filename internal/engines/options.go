package engines

// Options is the per-attempt view of a request. It is built from a favorite
// entry or from CLI flags and never persisted.
type Options struct {
	CipherFolder   string
	PlainFolder    string
	Key            string
	KeyFile        string
	IdleTimeout    string
	ConfigFilePath string
	Type           string
	MountOptions   string
	ReverseMode    bool
	ReadOnly       bool

	PreMountCommand    string
	PostMountCommand   string
	PreUnmountCommand  string
	PostUnmountCommand string
}
