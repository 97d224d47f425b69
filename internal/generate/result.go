package generate

// Result summarizes a generation run
type Result struct {
	DryRun bool
	Tags   []TagResult
}

// TagResult describes the manifest produced for one version
type TagResult struct {
	Tag     string
	From    string
	Path    string // manifest file path
	Fixed   int
	Upload  int
	Rename  int
	Entries int  // total entries across all three lists
	Changed bool // written, or would change on disk in dry-run mode
}
