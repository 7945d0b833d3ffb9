package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigLoadFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration could not be loaded").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Template errors

func TemplateLoadFailed(name string, cause error) *BuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "template set could not be loaded").
		WithContext("template", name)
}

func TemplateRenderFailed(name string, cause error) *BuildError {
	return Wrap(cause, CategoryTemplate, SeverityError, "template rendering failed").
		WithContext("template", name)
}

func UnknownLayout(sourcePath, layout string) *BuildError {
	return New(CategoryTemplate, SeverityWarning, "unknown layout, page skipped").
		WithContext("source_path", sourcePath).
		WithContext("layout", layout)
}

// Content errors

func SourceReadFailed(sourcePath string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "source file could not be read").
		WithContext("source_path", sourcePath)
}

func MetadataInvalid(sourcePath string, cause error) *BuildError {
	return Wrap(cause, CategoryParse, SeverityWarning, "frontmatter invalid, using raw content").
		WithContext("source_path", sourcePath)
}

// Persistence errors

func CacheCorrupt(path string, cause error) *BuildError {
	return Wrap(cause, CategoryCache, SeverityWarning, "cache entry corrupt, treating as empty").
		WithContext("path", path)
}

func OutputWriteFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "output could not be written").
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
