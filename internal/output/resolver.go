// Package output computes artifact paths from a naming template.
package output

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultTemplate is used when no template is configured.
const DefaultTemplate = "[filename].[ext].[compressExt]"

// Template placeholders.
const (
	FilenameToken    = "[filename]"
	ExtToken         = "[ext]"
	CompressExtToken = "[compressExt]"
	HashToken        = "[hash]"
)

// Resolver maps a source file to the path of its compressed artifact.
type Resolver struct {
	Template string

	// Token generates the [hash] value. It is called at most once per
	// Resolve and never for templates without [hash].
	Token func() string
}

// NewResolver returns a Resolver for template, falling back to
// DefaultTemplate when it is empty.
func NewResolver(template string) *Resolver {
	if template == "" {
		template = DefaultTemplate
	}
	return &Resolver{Template: template, Token: RandomToken}
}

// Resolve substitutes the template placeholders for fileName and joins the
// result with destDir. It never touches the filesystem.
func (r *Resolver) Resolve(destDir, fileName, codecExt string) string {
	return filepath.Join(destDir, r.Name(fileName, codecExt))
}

// ResolveWithToken is Resolve with a caller supplied [hash] value, so every
// codec of one source can share it.
func (r *Resolver) ResolveWithToken(destDir, fileName, codecExt, token string) string {
	return filepath.Join(destDir, r.NameWithToken(fileName, codecExt, token))
}

// Name returns the artifact file name without a directory.
func (r *Resolver) Name(fileName, codecExt string) string {
	return r.NameWithToken(fileName, codecExt, r.NewToken())
}

// NewToken returns a fresh [hash] value, or "" when the template has no
// [hash] placeholder.
func (r *Resolver) NewToken() string {
	if !strings.Contains(r.template(), HashToken) {
		return ""
	}
	if r.Token == nil {
		return RandomToken()
	}
	return r.Token()
}

// NameWithToken returns the artifact file name using token for [hash].
func (r *Resolver) NameWithToken(fileName, codecExt, token string) string {
	tmpl := r.template()

	base := filepath.Base(fileName)
	name, ext := base, ""
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		name, ext = base[:i], base[i+1:]
	}

	out := strings.NewReplacer(
		FilenameToken, name,
		ExtToken, ext,
		CompressExtToken, codecExt,
		HashToken, token,
	).Replace(tmpl)

	if ext == "" {
		for strings.Contains(out, "..") {
			out = strings.ReplaceAll(out, "..", ".")
		}
		out = strings.TrimSuffix(out, ".")
	}
	return out
}

func (r *Resolver) template() string {
	if r.Template == "" {
		return DefaultTemplate
	}
	return r.Template
}

// RandomToken returns a short opaque token derived from a random UUID.
func RandomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
