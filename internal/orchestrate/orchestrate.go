// Package orchestrate implements the four thin CLI drivers (C8): Input,
// Overview, File, and Multi. Each composes tag/image/registry/cache/upgrade/
// dockerfile; none contains any parsing or comparison logic of its own.
package orchestrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/tagwright/dockertag/internal/cache"
	"github.com/tagwright/dockertag/internal/dockerfile"
	"github.com/tagwright/dockertag/internal/image"
	"github.com/tagwright/dockertag/internal/progress"
	"github.com/tagwright/dockertag/internal/registry"
	"github.com/tagwright/dockertag/internal/tag"
	"github.com/tagwright/dockertag/internal/upgrade"
)

// Deps bundles the collaborators every orchestrator mode needs.
type Deps struct {
	Registry *registry.Client
	Cache    *cache.Cache
	Log      zerolog.Logger
	Progress *progress.Bus // optional; publishing is skipped when nil
	Out      io.Writer     // defaults to os.Stdout when nil
}

func (d Deps) out() io.Writer {
	if d.Out == nil {
		return os.Stdout
	}
	return d.Out
}

func (d Deps) publish(event progress.Event) {
	if d.Progress != nil {
		d.Progress.Publish(event)
	}
}

// resolveTags consults the cache, falling back to a registry fetch on miss,
// and always leaves the cache populated on success.
func resolveTags(ctx context.Context, d Deps, img image.Image, limit int, arch string) ([]tag.Tag, error) {
	fullName := img.GetFullName()

	if tags, ok := d.Cache.Get(fullName); ok {
		return tags, nil
	}
	if tags, ok := d.Cache.LoadFromDisk(fullName); ok {
		return tags, nil
	}

	d.publish(progress.Event{Image: img.String(), State: progress.Fetching})
	tags, err := d.Registry.GetTags(ctx, img, limit, arch)
	if err != nil {
		d.publish(progress.Event{Image: img.String(), State: progress.Failed, Err: err.Error()})
		return nil, err
	}

	d.Cache.Put(fullName, tags)
	d.publish(progress.Event{Image: img.String(), State: progress.Cached})
	return tags, nil
}

// Input reads one image reference and prints the chosen successor. In quiet
// mode the printed line is `name:tag` (or a blank line for no candidate);
// otherwise the result is logged instead.
func Input(ctx context.Context, d Deps, imageRef string, strategy upgrade.Strategy, limit int, arch string, quiet bool) error {
	img, err := image.Parse(imageRef)
	if err != nil {
		return fmt.Errorf("failed to parse image %q: %w", imageRef, err)
	}

	tags, err := resolveTags(ctx, d, img, limit, arch)
	if err != nil {
		return err
	}
	tags = sortedCopy(tags)

	current := img.GetTag()
	found, ok := upgrade.FindCandidate(current, tags, strategy)
	if !ok {
		d.Log.Info().Str("image", img.GetFullName()).Msg("no candidate found")
		d.publish(progress.Event{Image: img.String(), State: progress.NoCandidate, Strategy: string(strategy)})
		if quiet {
			fmt.Fprintln(d.out())
		}
		return nil
	}

	d.Log.Info().
		Str("image", img.GetFullName()).
		Str("candidate", fmt.Sprintf("%s:%s", img.GetFullName(), found.String())).
		Msg("candidate tag")
	d.publish(progress.Event{
		Image: img.String(), State: progress.Selected, Strategy: string(strategy),
		OldTag: current.String(), NewTag: found.String(),
	})
	if quiet {
		fmt.Fprintf(d.out(), "%s:%s\n", img.GetName(), strings.TrimRight(found.String(), "."))
	}
	return nil
}

// Overview reads one image reference and enumerates the successor for every
// strategy.
func Overview(ctx context.Context, d Deps, imageRef string, limit int, arch string, quiet bool) error {
	img, err := image.Parse(imageRef)
	if err != nil {
		return fmt.Errorf("failed to parse image %q: %w", imageRef, err)
	}

	tags, err := resolveTags(ctx, d, img, limit, arch)
	if err != nil {
		return err
	}
	tags = sortedCopy(tags)

	header := fmt.Sprintf("Results for:\t%s", img.GetFullTaggedName())
	if quiet {
		fmt.Fprintln(d.out(), header)
	} else {
		d.Log.Info().Msg(header)
	}

	current := img.GetTag()
	for _, strategy := range upgrade.AllStrategies {
		found, ok := upgrade.FindCandidate(current, tags, strategy)
		if !ok {
			if !quiet {
				d.Log.Info().Msgf("no candidate found for %s", strategy)
			}
			continue
		}
		if quiet {
			fmt.Fprintf(d.out(), "%s:\t%s:%s\n", strategy, img.GetName(), found)
		} else {
			d.Log.Info().Msgf("===> %s:\t%s:%s", strategy, img.GetName(), found)
		}
	}
	return nil
}

// File reads a single Dockerfile, resolves a successor for every base image,
// and either writes the result back or (dry-run) just logs it.
func File(ctx context.Context, d Deps, path string, strategy upgrade.Strategy, limit int, arch string, dryRun bool) (int, error) {
	df, err := dockerfile.Read(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read dockerfile %s: %w", path, err)
	}

	updated, n, err := updateDockerfile(ctx, d, df, strategy, limit, arch, nil)
	if err != nil {
		return 0, err
	}

	if dryRun {
		d.Log.Info().Msgf("updated dockerfile %s would look like:\n%s", path, updated.String())
		return n, nil
	}
	if err := updated.Write(); err != nil {
		return n, fmt.Errorf("failed to write dockerfile %s: %w", path, err)
	}
	return n, nil
}

// Multi walks folder for files whose basename starts with "dockerfile"
// (case-insensitively), applies excludeGlobs (doublestar patterns matched
// against each discovered path) and ignoreImages (full-equality skip list),
// and updates every surviving Dockerfile in place (or previews under
// dryRun). Read/parse failures abort only the current file; the walk
// continues.
func Multi(ctx context.Context, d Deps, folder string, strategy upgrade.Strategy, limit int, arch string, dryRun bool, excludeGlobs, ignoreImages []string) (int, error) {
	var candidates []string
	err := filepath.WalkDir(folder, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(strings.ToLower(entry.Name()), "dockerfile") {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk folder %s: %w", folder, err)
	}

	if len(excludeGlobs) > 0 {
		d.Log.Info().Strs("patterns", excludeGlobs).Msg("ignoring files")
		candidates = filterExcluded(candidates, excludeGlobs)
	}
	d.Log.Info().Strs("files", candidates).Msg("found files")

	var ignored []image.Image
	for _, ref := range ignoreImages {
		img, err := image.Parse(ref)
		if err != nil {
			d.Log.Warn().Err(err).Str("image", ref).Msg("could not parse ignored image, skipping")
			continue
		}
		ignored = append(ignored, img)
	}

	total := 0
	for _, path := range candidates {
		df, err := dockerfile.Read(path)
		if err != nil {
			d.Log.Error().Err(err).Str("file", path).Msg("could not read dockerfile")
			continue
		}

		updated, n, err := updateDockerfile(ctx, d, df, strategy, limit, arch, ignored)
		if err != nil {
			d.Log.Error().Err(err).Str("file", path).Msg("could not update dockerfile")
			continue
		}
		total += n

		if dryRun {
			d.Log.Info().Msgf("updated dockerfile %s would look like:\n%s", path, updated.String())
			continue
		}
		if err := updated.Write(); err != nil {
			d.Log.Error().Err(err).Str("file", path).Msg("could not write dockerfile")
		}
	}
	return total, nil
}

// updateDockerfile resolves and applies a successor tag for every base image
// in df not present in ignored, returning the mutated clone and the count of
// images actually changed.
func updateDockerfile(ctx context.Context, d Deps, df dockerfile.Dockerfile, strategy upgrade.Strategy, limit int, arch string, ignored []image.Image) (dockerfile.Dockerfile, int, error) {
	n := 0
	for _, idx := range df.BaseImages() {
		img := df.Instructions()[idx].Image()
		if isIgnored(img, ignored) {
			continue
		}

		tags, err := resolveTags(ctx, d, img, limit, arch)
		if err != nil {
			d.Log.Error().Err(err).Str("image", img.String()).Msg("could not fetch tags, skipping image")
			continue
		}
		tags = sortedCopy(tags)

		current := img.GetTag()
		found, ok := upgrade.FindCandidate(current, tags, strategy)
		if !ok {
			d.publish(progress.Event{Image: img.String(), State: progress.NoCandidate, Strategy: string(strategy)})
			continue
		}

		df.SetImageTag(idx, found)
		n++
		d.publish(progress.Event{
			Image: img.String(), State: progress.Written, Strategy: string(strategy),
			OldTag: current.String(), NewTag: found.String(),
		})
	}
	return df, n, nil
}

func isIgnored(img image.Image, ignored []image.Image) bool {
	for _, i := range ignored {
		if img.Equal(i) {
			return true
		}
	}
	return false
}

func filterExcluded(paths []string, globs []string) []string {
	var kept []string
	for _, p := range paths {
		excluded := false
		for _, g := range globs {
			if match, err := doublestar.Match(g, p); err == nil && match {
				excluded = true
				break
			}
			if strings.HasSuffix(p, g) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, p)
		}
	}
	return kept
}

func sortedCopy(tags []tag.Tag) []tag.Tag {
	cp := append([]tag.Tag(nil), tags...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Less(cp[j]) })
	return cp
}
