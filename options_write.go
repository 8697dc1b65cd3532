package tagsplice

// EditOption configures ReplaceFile.
//
// Example:
//
//	err := tagsplice.ReplaceFile(ctx, "song.mp3", 0, oldSize, newTag,
//	    tagsplice.WithBackup(".bak"),
//	    tagsplice.WithPreserveModTime(),
//	)
type EditOption func(*editOptions)

// editOptions holds configuration for editing files.
type editOptions struct {
	backupSuffix    string   // Suffix for backup file (e.g., ".bak")
	splice          []Option // Options forwarded to the splice
	preserveModTime bool     // Keep original modification time
	noSync          bool     // Skip fsync after the edit
}

// defaultEditOptions returns the default configuration for editing files.
func defaultEditOptions() *editOptions {
	return &editOptions{}
}

// WithBackup copies the original file before editing it.
//
// The backup file will have the specified suffix appended to the original
// filename. For example, WithBackup(".bak") will create "song.mp3.bak"
// before modifying "song.mp3". An existing backup is overwritten.
//
// The edit itself still happens in place; the backup costs one full copy of
// the file.
func WithBackup(suffix string) EditOption {
	return func(o *editOptions) {
		o.backupSuffix = suffix
	}
}

// WithPreserveModTime keeps the original file modification time.
//
// Use this when you want to maintain the original file timestamps,
// such as when updating metadata without changing the "modified" date.
func WithPreserveModTime() EditOption {
	return func(o *editOptions) {
		o.preserveModTime = true
	}
}

// WithoutSync skips the fsync that normally follows an edit.
func WithoutSync() EditOption {
	return func(o *editOptions) {
		o.noSync = true
	}
}

// WithSpliceOptions forwards splice options (buffer size, progress, logger)
// to the underlying splice.
func WithSpliceOptions(opts ...Option) EditOption {
	return func(o *editOptions) {
		o.splice = append(o.splice, opts...)
	}
}
