package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// EntryKind distinguishes the two kinds of listed filesystem entries.
type EntryKind int

const (
	EntryDirectory EntryKind = iota
	EntryFile
)

// String returns the wire name of the kind.
func (k EntryKind) String() string {
	switch k {
	case EntryDirectory:
		return "Directory"
	case EntryFile:
		return "File"
	default:
		return "Unknown"
	}
}

// EntryDetails describes an entry as either a directory or a file with a size.
// Size is only meaningful for EntryFile.
type EntryDetails struct {
	Kind EntryKind
	Size uint64
}

// DirectoryDetails returns the details of a directory entry.
func DirectoryDetails() EntryDetails {
	return EntryDetails{Kind: EntryDirectory}
}

// FileDetails returns the details of a file entry with the given size.
func FileDetails(size uint64) EntryDetails {
	return EntryDetails{Kind: EntryFile, Size: size}
}

type fileDetailsJSON struct {
	Size uint64 `json:"size"`
}

// MarshalJSON encodes the details as an externally tagged variant:
// {"Directory":{}} or {"File":{"size":N}}.
func (d EntryDetails) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case EntryDirectory:
		return json.Marshal(map[string]struct{}{"Directory": {}})
	case EntryFile:
		return json.Marshal(map[string]fileDetailsJSON{"File": {Size: d.Size}})
	default:
		return nil, fmt.Errorf("unknown entry kind %d", d.Kind)
	}
}

// UnmarshalJSON decodes the externally tagged variant written by MarshalJSON.
func (d *EntryDetails) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, ok := raw["Directory"]; ok {
		*d = DirectoryDetails()
		return nil
	}
	if body, ok := raw["File"]; ok {
		var f fileDetailsJSON
		if err := json.Unmarshal(body, &f); err != nil {
			return fmt.Errorf("decode file details: %w", err)
		}
		*d = FileDetails(f.Size)
		return nil
	}
	return fmt.Errorf("entry details: expected Directory or File variant")
}

// Entry is one child of a listed directory.
type Entry struct {
	Name    string       `json:"name"`
	Details EntryDetails `json:"details"`
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Details.Kind == EntryDirectory
}

// ResourceKind tags the variant held by a Resource.
type ResourceKind int

const (
	ResourceDirectory ResourceKind = iota
	ResourceFile
)

// Resource is the result of serving a path: a directory listing or an open file.
//
// When Kind is ResourceFile the caller owns File and must close it.
type Resource struct {
	Kind    ResourceKind
	Listing []Entry
	File    *os.File
	Info    os.FileInfo
}

// Close releases the file handle held by a file resource. It is a no-op for listings.
func (r *Resource) Close() error {
	if r == nil || r.File == nil {
		return nil
	}
	return r.File.Close()
}
