package files

type Config struct {
	MaxFilesPerUpload int   `env:"MAX_FILES_PER_UPLOAD" envDefault:"10"`
	MaxFileSize       int64 `env:"MAX_FILE_SIZE" envDefault:"104857600"`  // 100 MiB
	MaxTotalSize      int64 `env:"MAX_TOTAL_SIZE" envDefault:"524288000"` // 500 MiB
}
