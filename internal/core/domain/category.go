package domain

import (
	"path/filepath"
	"strings"
)

type Category string

const (
	CategoryResume      Category = "Resume"
	CategoryBill        Category = "Bill"
	CategoryInvoice     Category = "Invoice"
	CategoryAssignment  Category = "Assignment"
	CategoryNotes       Category = "Notes"
	CategoryProject     Category = "Project"
	CategoryCertificate Category = "Certificate"

	CategoryDocuments Category = "Documents"
	CategoryImages    Category = "Images"
	CategoryArchives  Category = "Archives"
	CategoryMedia     Category = "Media"
	CategoryCode      Category = "Code"

	FallbackCategory Category = "Others"
)

const (
	// ConfidenceThreshold must be strictly exceeded by the top label.
	ConfidenceThreshold = 0.5
	MaxClassifyChars    = 1000
	MaxFileSize         = 10 * 1024 * 1024

	ArchiveDownloadName = "organized_files.zip"
)

// AICategories is the candidate label set for zero-shot classification.
var AICategories = []Category{
	CategoryResume,
	CategoryBill,
	CategoryInvoice,
	CategoryAssignment,
	CategoryNotes,
	CategoryProject,
	CategoryCertificate,
}

type ExtensionGroup struct {
	Category   Category `json:"category"`
	Extensions []string `json:"extensions"`
}

// ExtensionGroups is scanned in declared order; the first group containing
// the extension wins.
var ExtensionGroups = []ExtensionGroup{
	{Category: CategoryDocuments, Extensions: []string{".pdf", ".docx", ".txt"}},
	{Category: CategoryImages, Extensions: []string{".jpg", ".jpeg", ".png", ".gif"}},
	{Category: CategoryArchives, Extensions: []string{".zip", ".rar", ".tar", ".gz"}},
	{Category: CategoryMedia, Extensions: []string{".mp4", ".mp3", ".mkv"}},
	{Category: CategoryCode, Extensions: []string{".py", ".cpp", ".js", ".html", ".css"}},
}

// ContentExtensions are eligible for text extraction and classification.
var ContentExtensions = []string{".pdf", ".txt"}

func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func IsContentExtension(ext string) bool {
	for _, candidate := range ContentExtensions {
		if candidate == ext {
			return true
		}
	}
	return false
}

func CategoryForExtension(ext string) (Category, bool) {
	for _, group := range ExtensionGroups {
		for _, candidate := range group.Extensions {
			if candidate == ext {
				return group.Category, true
			}
		}
	}
	return "", false
}

func IsAICategory(label string) bool {
	for _, category := range AICategories {
		if string(category) == label {
			return true
		}
	}
	return false
}

// ReservedNames lists every folder name the router may create.
func ReservedNames() []string {
	out := make([]string, 0, len(AICategories)+len(ExtensionGroups)+1)
	for _, category := range AICategories {
		out = append(out, string(category))
	}
	for _, group := range ExtensionGroups {
		out = append(out, string(group.Category))
	}
	return append(out, string(FallbackCategory))
}

func AILabels() []string {
	out := make([]string, 0, len(AICategories))
	for _, category := range AICategories {
		out = append(out, string(category))
	}
	return out
}
