package config

const (
	// MaxFieldIDLength bounds field and image tag identifiers. Tags are
	// authored in layout templates, so anything longer is a client bug.
	MaxFieldIDLength = 128

	// MaxFieldValueLength is the maximum length of one editable text region.
	MaxFieldValueLength = 20000

	// MaxFieldsPerDocument caps the size of a saved field map (and image map).
	MaxFieldsPerDocument = 500

	// MaxImageURLLength is the maximum length for a background image URL.
	MaxImageURLLength = 2048

	// MaxImageUploadBytes limits uploaded landing page images to 5 MiB.
	MaxImageUploadBytes = 5 << 20

	// MaxLayoutNameLength is the maximum length for layout names.
	MaxLayoutNameLength = 64
)
