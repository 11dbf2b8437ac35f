package buttons

import "vidhub/pkg/types"

// Gallery button ids
const (
	ShowThumbnails = "showThumbnails"
	ShowFilmstrip  = "showFilmstrip"
	ShowFiles      = "showFiles"
	MakeSmaller    = "makeSmaller"
	MakeLarger     = "makeLarger"
	HoverScrub     = "hoverScrub"
	ShowMoreInfo   = "showMoreInfo"
)

// Search button ids; the first five match the filter channel names
const (
	SearchFolderUnion = "folderUnion"
	SearchFolder      = "folder"
	SearchFileUnion   = "fileUnion"
	SearchFile        = "file"
	SearchExclude     = "exclude"
	SearchMagic       = "magic"
	ShowFreq          = "showFreq"
	ShowRecent        = "showRecent"
)

// ViewGroup is the radio-style group selecting the gallery layout
var ViewGroup = []string{ShowThumbnails, ShowFilmstrip, ShowFiles}

var viewForButton = map[string]types.View{
	ShowThumbnails: types.ViewThumbs,
	ShowFilmstrip:  types.ViewFilmstrip,
	ShowFiles:      types.ViewFiles,
}

// ViewForButton maps a view-group button to its layout
func ViewForButton(id string) (types.View, bool) {
	v, ok := viewForButton[id]
	return v, ok
}

// ButtonForView maps a layout to its view-group button
func ButtonForView(v types.View) string {
	for id, view := range viewForButton {
		if view == v {
			return id
		}
	}
	return ShowThumbnails
}

// NewSearchButtons declares the search bar switches in render order
func NewSearchButtons() *Registry {
	return NewRegistry(
		Button{ID: SearchFolderUnion, Label: "Folder union", State: State{Hidden: true}},
		Button{ID: SearchFolder, Label: "Folder search", State: State{Toggled: true}},
		Button{ID: SearchFileUnion, Label: "File union", State: State{Hidden: true}},
		Button{ID: SearchFile, Label: "File search", State: State{Toggled: true}},
		Button{ID: SearchExclude, Label: "Exclude", State: State{Hidden: true}},
		Button{ID: SearchMagic, Label: "Magic search", State: State{Hidden: true}},
		Button{ID: ShowFreq, Label: "Word frequency"},
		Button{ID: ShowRecent, Label: "Recently opened", State: State{Hidden: true}},
	)
}

// NewGalleryButtons declares the gallery toolbar in render order. The view
// group starts with initial selected, or thumbnails when initial is unknown.
func NewGalleryButtons(initial types.View) *Registry {
	r := NewRegistry(
		Button{ID: ShowThumbnails, Label: "Thumbnails"},
		Button{ID: ShowFilmstrip, Label: "Filmstrip"},
		Button{ID: ShowFiles, Label: "Files"},
		Button{ID: MakeSmaller, Label: "Smaller"},
		Button{ID: MakeLarger, Label: "Larger"},
		Button{ID: HoverScrub, Label: "Hover scrub", State: State{Toggled: true}},
		Button{ID: ShowMoreInfo, Label: "More info", State: State{Toggled: true}},
	)
	r.SelectExclusive(ViewGroup, ButtonForView(initial))
	return r
}
