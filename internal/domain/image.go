package domain

import "strings"

// Image is a stored image descriptor: the public URL and the object-storage
// filename (object key) it was uploaded under.
type Image struct {
	URL      string
	Filename string
}

// Placeholder descriptors substituted when no image was uploaded. They are
// served as static assets and are never deleted from object storage.
var (
	PlaceholderCampgroundImage = Image{
		URL:      "/static/defaults/campground-default.jpg",
		Filename: "defaults/campground-default",
	}
	PlaceholderAvatarImage = Image{
		URL:      "/static/defaults/avatar-default.png",
		Filename: "defaults/avatar-default",
	}
)

// IsPlaceholder reports whether the image is one of the fixed default
// descriptors. Placeholder assets must never be removed from storage.
func (i Image) IsPlaceholder() bool {
	return i.Filename == PlaceholderCampgroundImage.Filename ||
		i.Filename == PlaceholderAvatarImage.Filename
}

// ThumbnailForShow rewrites the URL into the show-page display variant.
// The transform is a pure function of the stored URL, nothing is persisted.
func (i Image) ThumbnailForShow() string {
	return strings.Replace(i.URL, "/upload", "/upload/w_544,h_363,c_scale", 1)
}

// ThumbnailForEditForm rewrites the URL into the edit-form display variant.
func (i Image) ThumbnailForEditForm() string {
	return strings.Replace(i.URL, "/upload", "/upload/w_200,h_150,c_scale", 1)
}
