package index

import "fmt"

// ResourceType places a resource on one level of the DICOM hierarchy:
// a patient owns studies, a study owns series, a series owns instances.
// The numeric values are part of the stored schema and must not change.
type ResourceType int32

const (
	ResourcePatient ResourceType = iota
	ResourceStudy
	ResourceSeries
	ResourceInstance
)

// String implements fmt.Stringer.
func (t ResourceType) String() string {
	switch t {
	case ResourcePatient:
		return "patient"
	case ResourceStudy:
		return "study"
	case ResourceSeries:
		return "series"
	case ResourceInstance:
		return "instance"
	default:
		return fmt.Sprintf("resource-type(%d)", int32(t))
	}
}

// Valid reports whether t is one of the four hierarchy levels.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourcePatient, ResourceStudy, ResourceSeries, ResourceInstance:
		return true
	default:
		return false
	}
}

// Attachment describes one file attached to a resource. The payload
// itself lives in a storage area; the index only records the UUID under
// which the area knows it, together with the sizes and the compression
// applied.
type Attachment struct {
	// FileType distinguishes the attachments of one resource (DICOM
	// file, JSON summary, ...). A resource holds at most one attachment
	// per file type.
	FileType int32

	// UUID identifies the content inside the storage area.
	UUID string

	CompressedSize   int64
	UncompressedSize int64

	// CompressionType records how the stored bytes were compressed;
	// zero means no compression.
	CompressionType int32
}
