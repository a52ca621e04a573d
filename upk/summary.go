package upk

// Magic is the container format's file tag
const Magic uint32 = 0x9E2A83C1

// TextureAllocation is one record of the header's texture allocation list,
// carried through verbatim by the core.
type TextureAllocation struct {
	SizeX         int32
	SizeY         int32
	NumMips       int32
	Format        uint32
	CreateFlags   uint32
	ExportIndices []int32
}

// FileSummary is the container header. The magic and file versions are
// carried through verbatim; counts and offsets locate the tables and the
// start of the body stream.
type FileSummary struct {
	Magic           uint32
	FileVersion     uint16
	FileLicensee    uint16
	TotalHeaderSize int32
	PackageName     string
	PackageFlags    uint32

	NameCount    int32
	NameOffset   int32
	ExportCount  int32
	ExportOffset int32
	ImportCount  int32
	ImportOffset int32

	DependsOffset   int32
	ThumbnailOffset int32

	EngineVersion   int32
	CookerVersion   int32
	LicenseeVersion int32

	AdditionalPackagesToCook []string
	TextureAllocations       []TextureAllocation
}
