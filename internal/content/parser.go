package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
	"git.home.luguber.info/inful/pagesmith/internal/images"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
)

// Parser turns source files into Pages.
type Parser struct {
	postsDir  string
	converter *markdown.Converter
	rewriter  *images.Rewriter
	logger    *slog.Logger
}

// Option customizes a Parser.
type Option func(*Parser)

// WithLogger sets the parser logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithImageRewriter enables responsive image rewriting.
func WithImageRewriter(r *images.Rewriter) Option {
	return func(p *Parser) { p.rewriter = r }
}

// WithConverter replaces the default Markdown converter.
func WithConverter(c *markdown.Converter) Option {
	return func(p *Parser) {
		if c != nil {
			p.converter = c
		}
	}
}

// NewParser creates a Parser. Files under postsDir get /posts/ URLs.
func NewParser(postsDir string, opts ...Option) *Parser {
	p := &Parser{
		postsDir:  postsDir,
		converter: markdown.NewConverter(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// InPosts reports whether sourcePath lies inside the posts directory.
func (p *Parser) InPosts(sourcePath string) bool {
	return IsWithin(p.postsDir, sourcePath)
}

// Parse reads and parses a source file.
//
// Only read failures are returned as errors. Malformed frontmatter falls back
// to empty metadata with the whole file as body.
func (p *Parser) Parse(sourcePath string) (*Page, error) {
	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, perrors.SourceReadFailed(sourcePath, err)
	}
	return p.ParseBytes(sourcePath, raw)
}

// ParseBytes parses already loaded source content.
func (p *Parser) ParseBytes(sourcePath string, raw []byte) (*Page, error) {
	metadata, body := p.splitMetadata(sourcePath, raw)

	if v, ok := metadata[KeyDate]; ok {
		if d, ok := NormalizeDate(v); ok {
			metadata[KeyDate] = d
		} else {
			delete(metadata, KeyDate)
			p.logger.Debug("Dropping unparseable date",
				logfields.SourcePath(sourcePath),
				slog.Any("date", v))
		}
	}

	inPosts := p.InPosts(sourcePath)
	slug, url := DeriveURL(sourcePath, inPosts)
	metadata[KeyURL] = url

	if p.rewriter != nil {
		var n int
		body, n = p.rewriter.Rewrite(body)
		if n > 0 {
			p.logger.Debug("Rewrote image references", logfields.SourcePath(sourcePath), logfields.Count(n))
		}
	}

	html, err := p.converter.Convert(body)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.CategoryParse, perrors.SeverityError, "markdown conversion failed").
			WithContext("source_path", sourcePath)
	}

	return &Page{
		SourcePath: sourcePath,
		Slug:       slug,
		URL:        url,
		InPosts:    inPosts,
		Metadata:   metadata,
		BodyHTML:   html,
	}, nil
}

func (p *Parser) splitMetadata(sourcePath string, raw []byte) (map[string]any, []byte) {
	doc, err := frontmatter.Split(raw)
	if err != nil {
		p.logger.Warn("Invalid frontmatter, using raw content",
			logfields.SourcePath(sourcePath),
			logfields.Error(perrors.MetadataInvalid(sourcePath, err)))
		return map[string]any{}, raw
	}
	if !doc.Had {
		return map[string]any{}, raw
	}

	fields, err := frontmatter.ParseYAML(doc.Frontmatter)
	if err != nil {
		p.logger.Warn("Invalid frontmatter, using raw content",
			logfields.SourcePath(sourcePath),
			logfields.Error(perrors.MetadataInvalid(sourcePath, err)))
		return map[string]any{}, raw
	}
	return fields, doc.Body
}

// IsWithin reports whether target is dir itself or nested below it.
func IsWithin(dir, target string) bool {
	if dir == "" {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
