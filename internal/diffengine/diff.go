package diffengine

import (
	"sort"

	"github.com/esm-dev/breakcheck/internal/content"
	"github.com/esm-dev/breakcheck/internal/entries"
	"github.com/esm-dev/breakcheck/internal/jsmod"
)

// entryKinds is the fixed diff order; spec.md §9 resolves bin entries to be
// diffed exactly like main, browser, and exports.
var entryKinds = []entries.Kind{entries.Main, entries.Bin, entries.Browser, entries.Exports}

// Diff compares a previous and current package, each identified by its
// Content Source and resolved entry Table, producing the full breaking-
// change Report.
func Diff(previousContent, currentContent content.Source, previousEntries, currentEntries entries.Table) (*Report, error) {
	removedAssets, err := diffAssets(previousContent, currentContent)
	if err != nil {
		return nil, err
	}

	previousExtractor, err := jsmod.NewExtractor(previousContent)
	if err != nil {
		return nil, err
	}
	currentExtractor, err := jsmod.NewExtractor(currentContent)
	if err != nil {
		return nil, err
	}

	report := &Report{RemovedAssets: removedAssets}

	for _, kind := range entryKinds {
		broken, err := diffEntryClass(kind, previousEntries[kind], currentEntries[kind], previousExtractor, currentExtractor)
		if err != nil {
			return nil, err
		}
		report.BrokenEntries = append(report.BrokenEntries, broken...)
	}

	return report, nil
}

func diffAssets(previous, current content.Source) ([]string, error) {
	previousAssets, err := previous.AssetList()
	if err != nil {
		return nil, err
	}
	currentAssets, err := current.AssetList()
	if err != nil {
		return nil, err
	}

	currentSet := make(map[string]bool, len(currentAssets))
	for _, a := range currentAssets {
		currentSet[a] = true
	}

	var removed []string
	for _, a := range previousAssets {
		if !currentSet[a] {
			removed = append(removed, a)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

func diffEntryClass(kind entries.Kind, previousGroup, currentGroup map[string]entries.Entry, previousExtractor, currentExtractor *jsmod.Extractor) ([]BrokenEntry, error) {
	names := make([]string, 0, len(previousGroup))
	for name := range previousGroup {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []BrokenEntry
	for _, name := range names {
		previousEntry := previousGroup[name]
		currentEntry, ok := currentGroup[name]
		if !ok {
			results = append(results, BrokenEntry{Kind: string(kind), Name: name, Missing: true})
			continue
		}

		broken, err := diffEntryExports(previousExtractor, currentExtractor, previousEntry, currentEntry)
		if err != nil {
			return nil, err
		}
		results = append(results, BrokenEntry{Kind: string(kind), Name: name, BrokenExports: broken})
	}
	return results, nil
}

func diffEntryExports(previousExtractor, currentExtractor *jsmod.Extractor, previousEntry, currentEntry entries.Entry) ([]BrokenExport, error) {
	previousExports, err := previousExtractor.Extract(previousEntry.Path)
	if err != nil {
		return nil, err
	}
	currentExports, err := currentExtractor.Extract(currentEntry.Path)
	if err != nil {
		return nil, err
	}

	var broken []BrokenExport
	if previousExports.Default != nil && currentExports.Default == nil {
		broken = append(broken, BrokenExport{Label: defaultExportLabel(), Break: Removed})
	}

	var missingNamed []string
	for name := range previousExports.Named {
		if _, ok := currentExports.Named[name]; !ok {
			missingNamed = append(missingNamed, name)
		}
	}
	sort.Strings(missingNamed)
	for _, name := range missingNamed {
		broken = append(broken, BrokenExport{Label: namedExportLabel(name), Break: RemovedOrRenamed})
	}

	return broken, nil
}
