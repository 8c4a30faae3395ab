package store

import "sort"

// ImageMeta carries the upload provenance needed to create an image record.
type ImageMeta struct {
	Filename     string
	OriginalName string
	UploadedBy   string
	Size         int64
	MimeType     string
	URL          string
}

// AddImage appends a new image record and persists. New images are always
// public; the only way to remove visibility is deletion.
func (s *Store) AddImage(meta ImageMeta) Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	img := Image{
		ID:           s.nextID(),
		Filename:     meta.Filename,
		OriginalName: meta.OriginalName,
		UploadedBy:   meta.UploadedBy,
		Size:         meta.Size,
		MimeType:     meta.MimeType,
		UploadedAt:   s.now(),
		Views:        0,
		IsPublic:     true,
		URL:          meta.URL,
	}
	s.images = append(s.images, img)
	s.persist()
	return img
}

// RemoveImage deletes the record with the given id and persists. Returns
// ErrNotFound when no record matches; the registry is left unchanged in that
// case. The underlying file is the caller's responsibility.
func (s *Store) RemoveImage(id int64) (Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, img := range s.images {
		if img.ID == id {
			s.images = append(s.images[:i], s.images[i+1:]...)
			s.persist()
			return img, nil
		}
	}
	return Image{}, ErrNotFound
}

// PublicImages returns the public records sorted newest first. The sort is
// stable so records with equal timestamps keep insertion order.
func (s *Store) PublicImages() []Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	public := make([]Image, 0, len(s.images))
	for _, img := range s.images {
		if img.IsPublic {
			public = append(public, img)
		}
	}
	sort.SliceStable(public, func(i, j int) bool {
		return public[i].UploadedAt.After(public[j].UploadedAt)
	})
	return public
}

// Filenames returns the stored filename of every image, in insertion order.
func (s *Store) Filenames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.images))
	for i, img := range s.images {
		names[i] = img.Filename
	}
	return names
}

// ImageCount returns the number of records in the registry.
func (s *Store) ImageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// IncrementViews bumps the view counter of the image with the given stored
// filename and returns the new count. A miss returns 0 without error so a
// view tick racing a delete stays harmless.
func (s *Store) IncrementViews(filename string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.images {
		if s.images[i].Filename == filename {
			s.images[i].Views++
			s.persist()
			return s.images[i].Views
		}
	}
	return 0
}
