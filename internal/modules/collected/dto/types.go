package dto

type ProcessBundleInput struct {
	BundleDir string
}

type BundleOutput struct {
	BundleDir     string
	TalkingBookID string
	CollectionID  string
	// Collected and Deployed are nil when the row was omitted.
	Collected  map[string]string
	Deployed   map[string]string
	Messages   int
	Plays      int
	Files      int
	Records    int
	Errors     int
	Warnings   int
	Boots      int
	LatestTime string
	Supplied   []string
	Mismatches []string
	Problems   []string
}

type ProcessBundlesInput struct {
	BundleDirs []string
}

type BundleFailure struct {
	BundleDir string
	Error     string
}

type BatchOutput struct {
	Bundles  []BundleOutput
	Failures []BundleFailure
}

type CollectionOutput struct {
	CollectionID   string
	TalkingBookID  string
	Deployment     string
	ContentPackage string
	CollectedAt    string
	Messages       int
	Plays          int
	Errors         int
	ProcessedAt    string
}
