// Package dockerfile implements the FROM-line parser/updater (C7) plus the
// thin Dockerfile/DockerInstruction model C8's orchestrators drive. Only the
// FROM-line sub-grammar is parsed semantically; every other line round-trips
// byte-for-byte.
package dockerfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tagwright/dockertag/internal/image"
	"github.com/tagwright/dockertag/internal/tag"
)

// ErrMissingPath is returned by Write when the Dockerfile has no recorded path.
var ErrMissingPath = errors.New("no path was set for the given dockerfile")

// ErrEmptyFile is returned by Parse when the content is empty.
var ErrEmptyFile = errors.New("the given file is empty")

// Instruction is either a From(image, stageAlias?) or a Raw(originalLine).
// Raw lines are preserved exactly, including whitespace and comments.
type Instruction struct {
	isFrom    bool
	image     image.Image
	stageName *string
	raw       string
}

// IsFromType reports whether this instruction is a FROM line.
func (i Instruction) IsFromType() bool { return i.isFrom }

// HasValidImage reports whether this is a FROM instruction whose image tag
// is not a stage-alias placeholder.
func (i Instruction) HasValidImage() bool {
	return i.isFrom && !i.image.GetTag().AllowedMissing
}

// Image returns the parsed image for a FROM instruction (zero value otherwise).
func (i Instruction) Image() image.Image { return i.image }

// StageName returns the alias after AS, if any.
func (i Instruction) StageName() *string { return i.stageName }

// String renders the instruction: `FROM <image> AS <alias>` or
// `FROM <image>` for From instructions (each followed by a newline), or the
// original line verbatim for Raw instructions.
func (i Instruction) String() string {
	if !i.isFrom {
		return i.raw + "\n"
	}
	if i.stageName != nil {
		return fmt.Sprintf("FROM %s AS %s\n", i.image, *i.stageName)
	}
	return fmt.Sprintf("FROM %s\n", i.image)
}

// ParseInstruction classifies a single Dockerfile line. A line is a FROM
// instruction if, after trimming leading whitespace and collapsing runs of
// two spaces to one, its uppercase form begins with "FROM ".
func ParseInstruction(line string) (Instruction, error) {
	trimmed := strings.ReplaceAll(strings.TrimLeft(line, " \t"), "  ", " ")
	if strings.HasPrefix(strings.ToUpper(trimmed), "FROM ") {
		img, stageName, err := ParseFromLine(line)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{isFrom: true, image: img, stageName: stageName}, nil
	}
	return Instruction{raw: line}, nil
}

// ParseFromLine extracts the image reference and optional stage alias from
// a FROM directive. After stripping the keyword, the first " as" token
// (case-insensitive) in the remainder splits the image from the alias.
func ParseFromLine(line string) (image.Image, *string, error) {
	trimmed := strings.ReplaceAll(strings.TrimLeft(line, " \t"), "  ", " ")
	withoutFrom := trimmed
	if len(trimmed) >= len("FROM") && strings.EqualFold(trimmed[:len("FROM")], "FROM") {
		withoutFrom = strings.TrimSpace(trimmed[len("FROM"):])
	}

	lower := strings.ToLower(withoutFrom)
	if idx := strings.Index(lower, " as"); idx >= 0 {
		imagePart := strings.TrimSpace(withoutFrom[:idx])
		alias := strings.TrimSpace(withoutFrom[idx+3:])
		img, err := image.Parse(imagePart)
		if err != nil {
			return image.Image{}, nil, err
		}
		return img, &alias, nil
	}

	img, err := image.Parse(strings.TrimSpace(withoutFrom))
	if err != nil {
		return image.Image{}, nil, err
	}
	return img, nil, nil
}

// Dockerfile is a sequence of instructions, plus an optional on-disk path.
type Dockerfile struct {
	instructions []Instruction
	path         string
}

// Parse splits content into lines and parses each one. A single trailing
// newline ends the last line rather than starting an empty one. An empty
// content is an error (ErrEmptyFile).
func Parse(content string) (Dockerfile, error) {
	if content == "" {
		return Dockerfile{}, ErrEmptyFile
	}
	var instructions []Instruction
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		inst, err := ParseInstruction(line)
		if err != nil {
			return Dockerfile{}, err
		}
		instructions = append(instructions, inst)
	}
	return Dockerfile{instructions: instructions}, nil
}

// Read reads path from disk, parses it, and records path for later Write
// calls.
func Read(path string) (Dockerfile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Dockerfile{}, err
	}
	df, err := Parse(string(content))
	if err != nil {
		return Dockerfile{}, err
	}
	df.path = path
	return df, nil
}

// Path returns the on-disk path recorded by Read, or "" if this Dockerfile
// did not come from Read. WriteToPath does not record its path.
func (d Dockerfile) Path() string { return d.path }

// Instructions returns the parsed instruction sequence.
func (d Dockerfile) Instructions() []Instruction { return d.instructions }

// BaseImages returns the index of every FROM instruction whose tag is not a
// stage-alias placeholder.
func (d Dockerfile) BaseImages() []int {
	var indexes []int
	for i, inst := range d.instructions {
		if inst.HasValidImage() {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// SetImageTag mutates the tag of the FROM instruction at index. d gets its
// own copy of the instruction list first, so other copies of the Dockerfile
// value are left unchanged.
func (d *Dockerfile) SetImageTag(index int, t tag.Tag) {
	instructions := append([]Instruction(nil), d.instructions...)
	inst := instructions[index]
	inst.image.SetTag(t)
	instructions[index] = inst
	d.instructions = instructions
}

// String renders the Dockerfile by concatenating every instruction's
// rendering; non-FROM lines round-trip unchanged.
func (d Dockerfile) String() string {
	var b strings.Builder
	for _, inst := range d.instructions {
		b.WriteString(inst.String())
	}
	return b.String()
}

// Write persists the Dockerfile to its recorded path. Returns ErrMissingPath
// if no path was recorded.
func (d Dockerfile) Write() error {
	if d.path == "" {
		return ErrMissingPath
	}
	return os.WriteFile(d.path, []byte(d.String()), 0o644)
}

// WriteToPath persists the Dockerfile to an explicit path, ignoring any
// recorded path.
func (d Dockerfile) WriteToPath(path string) error {
	return os.WriteFile(path, []byte(d.String()), 0o644)
}
