// Package image models container image references across the three
// supported registry families (Docker Hub, Microsoft Container Registry,
// Google Container Registry) and parses/renders the `[registry/][group/]name[:tag]`
// reference grammar.
package image

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tagwright/dockertag/internal/tag"
)

const (
	mcrPrefix = "mcr.microsoft.com/"
	gcrPrefix = "gcr.io/"
)

// ErrEmptyImage is returned when the image string (after stripping a
// trailing ':') is blank.
var ErrEmptyImage = errors.New("image name is empty")

// Registry identifies which of the three supported families an image
// belongs to.
type Registry int

const (
	Dockerhub Registry = iota
	Mcr
	Gcr
)

// Metadata is the (group?, name, tag) tuple shared by every registry family.
type Metadata struct {
	Group *string
	Name  string
	Tag   tag.Tag
}

// Image is the tagged union over {Dockerhub, Mcr, Gcr}, each wrapping a
// Metadata. Registry identity is carried explicitly rather than through
// subtyping, since Go has no sum types.
type Image struct {
	Registry Registry
	Metadata Metadata
}

// Parse detects the registry prefix and parses the remainder as a Metadata
// reference.
func Parse(s string) (Image, error) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, mcrPrefix):
		md, err := parseMetadata(s[len(mcrPrefix):])
		if err != nil {
			return Image{}, err
		}
		return Image{Registry: Mcr, Metadata: md}, nil
	case strings.HasPrefix(lower, gcrPrefix):
		md, err := parseMetadata(s[len(gcrPrefix):])
		if err != nil {
			return Image{}, err
		}
		return Image{Registry: Gcr, Metadata: md}, nil
	default:
		md, err := parseMetadata(s)
		if err != nil {
			return Image{}, err
		}
		return Image{Registry: Dockerhub, Metadata: md}, nil
	}
}

// parseMetadata parses `[group/]name[:tag]`. A trailing ':' is stripped
// (treat "name:" as "name"). With no ':' present, the tag is synthesized
// with AllowedMissing=true (a build-stage alias reference, e.g. `FROM base`).
func parseMetadata(s string) (Metadata, error) {
	cleaned := strings.TrimSuffix(s, ":")
	if strings.TrimSpace(cleaned) == "" {
		return Metadata{}, ErrEmptyImage
	}

	if group, rest, ok := strings.Cut(cleaned, "/"); ok {
		if name, tagStr, ok := strings.Cut(rest, ":"); ok {
			g := group
			return Metadata{Group: &g, Name: name, Tag: tag.Parse(tagStr)}, nil
		}
	} else if name, tagStr, ok := strings.Cut(cleaned, ":"); ok {
		return Metadata{Name: name, Tag: tag.Parse(tagStr)}, nil
	}

	// No ':' present anywhere: either a bare "name" (dockerhub-style, no
	// group) or a reference to a previous build stage.
	return Metadata{Name: cleaned, Tag: tag.AllowedMissingTag()}, nil
}

// GetGroup returns the group segment, if any.
func (img Image) GetGroup() *string { return img.Metadata.Group }

// GetGroupString returns the group, or "" if absent.
func (img Image) GetGroupString() string {
	if img.Metadata.Group == nil {
		return ""
	}
	return *img.Metadata.Group
}

// GetName returns the bare image name (no group, no tag).
func (img Image) GetName() string { return img.Metadata.Name }

// GetTag returns the current tag.
func (img Image) GetTag() tag.Tag { return img.Metadata.Tag }

// SetTag replaces the current tag in place.
func (img *Image) SetTag(t tag.Tag) { img.Metadata.Tag = t }

// IsLatest reports whether the current tag is the reserved "latest" literal.
func (img Image) IsLatest() bool { return img.Metadata.Tag.Latest }

// IsMcr, IsGcr, IsDockerhub report the registry family.
func (img Image) IsMcr() bool       { return img.Registry == Mcr }
func (img Image) IsGcr() bool       { return img.Registry == Gcr }
func (img Image) IsDockerhub() bool { return img.Registry == Dockerhub }

// IsEmpty reports whether this is the zero-value image (no group, empty
// name, zero tag). Parse never returns this shape: an empty name is an error.
func (img Image) IsEmpty() bool {
	return img.Metadata.Group == nil && img.Metadata.Name == "" && img.Metadata.Tag.Equal(tag.Tag{})
}

// GetFullName renders `[group-or-library]/name` for Docker Hub (injecting
// the implicit `library/` namespace when querying the API and no group was
// given, unless the tag is allowed-missing), or `[group/]name` for MCR/GCR.
func (img Image) GetFullName() string {
	switch img.Registry {
	case Dockerhub:
		if img.Metadata.Tag.AllowedMissing {
			return img.GetName()
		}
		if img.Metadata.Group != nil {
			return fmt.Sprintf("%s/%s", *img.Metadata.Group, img.GetName())
		}
		return "library/" + img.GetName()
	default: // Mcr, Gcr
		if img.Metadata.Group != nil {
			return fmt.Sprintf("%s/%s", *img.Metadata.Group, img.GetName())
		}
		return img.GetName()
	}
}

// GetFullTaggedName renders `group/name:tag`, using "" for an absent group.
func (img Image) GetFullTaggedName() string {
	return fmt.Sprintf("%s/%s:%s", img.GetGroupString(), img.GetName(), img.GetTag())
}

// GetTaggedName renders `name:tag`, omitting any group.
func (img Image) GetTaggedName() string {
	return fmt.Sprintf("%s:%s", img.GetName(), img.GetTag())
}

// GetQueryURL builds the canonical tag-listing URL for this image's registry.
func (img Image) GetQueryURL() (string, error) {
	switch img.Registry {
	case Dockerhub:
		return fmt.Sprintf("https://hub.docker.com/v2/repositories/%s/tags?page_size=100", img.GetFullName()), nil
	case Mcr:
		return fmt.Sprintf("https://mcr.microsoft.com/api/v1/catalog/%s/tags?reg=mar", img.GetFullName()), nil
	case Gcr:
		if img.Metadata.Group == nil {
			return "", errors.New("gcr image has no group/project set")
		}
		return fmt.Sprintf(
			"https://artifactregistry.clients6.google.com/v1/projects/%s/locations/us/repositories/gcr.io/packages/%s/versions",
			*img.Metadata.Group, img.GetName(),
		), nil
	default:
		return "", fmt.Errorf("unknown registry %v", img.Registry)
	}
}

// Equal reports registry+group+name+tag equality, the comparison the
// upgrade selector's ignore list relies on.
func (img Image) Equal(o Image) bool {
	if img.Registry != o.Registry {
		return false
	}
	if img.GetGroupString() != o.GetGroupString() {
		return false
	}
	if img.GetName() != o.GetName() {
		return false
	}
	return img.Metadata.Tag.Equal(o.Metadata.Tag)
}

// String renders the image, preserving the original registry prefix,
// omitting "library/", and appending ":<tag>" unless the tag is
// allowed-missing.
func (img Image) String() string {
	var b strings.Builder
	switch img.Registry {
	case Gcr:
		b.WriteString(gcrPrefix)
	case Mcr:
		b.WriteString(mcrPrefix)
	}
	if img.Metadata.Group != nil {
		b.WriteString(*img.Metadata.Group)
		b.WriteByte('/')
	}
	b.WriteString(img.Metadata.Name)
	if img.Metadata.Tag.AllowedMissing {
		b.WriteString(img.Metadata.Tag.String())
	} else {
		b.WriteByte(':')
		b.WriteString(img.Metadata.Tag.String())
	}
	return b.String()
}
