package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"inkwell/internal/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// ImageKind selects the bounding box an upload is scaled into.
type ImageKind int

const (
	ImageAvatar ImageKind = iota
	ImagePost
)

// MaxSide is the longest edge, in pixels, stored for this kind.
func (k ImageKind) MaxSide() int {
	if k == ImageAvatar {
		return 125
	}
	return 800
}

func (k ImageKind) folder() string {
	if k == ImageAvatar {
		return "avatars"
	}
	return "posts"
}

const MaxImageSize = 5 << 20

var (
	ErrUnsupportedImage = errors.New("unsupported image type, use jpg, jpeg, png or gif")
	ErrImageTooLarge    = errors.New("image is larger than 5MB")
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// ImageStore persists uploaded pictures and returns the name stored on the model.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader, filename string, kind ImageKind) (string, error)
	Delete(ctx context.Context, name string) error
}

func checkImageExt(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return "", ErrUnsupportedImage
	}
	return ext, nil
}

// LocalImageStore writes resized images under Dir, named by a random UUID.
type LocalImageStore struct {
	Dir string
}

func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{Dir: dir}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, r io.Reader, filename string, kind ImageKind) (string, error) {
	ext, err := checkImageExt(filename)
	if err != nil {
		return "", err
	}

	src, _, err := image.Decode(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", ErrUnsupportedImage)
	}
	dst := fitImage(src, kind.MaxSide())

	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".png":
		err = png.Encode(f, dst)
	case ".gif":
		err = gif.Encode(f, dst, nil)
	default:
		err = jpeg.Encode(f, dst, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("encode image: %w", err)
	}
	return name, nil
}

// Delete removes a stored image. The shared default picture and names this
// store did not produce are left alone.
func (s *LocalImageStore) Delete(ctx context.Context, name string) error {
	if name == "" || name == models.DefaultImageFile || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// fitImage scales src down so neither side exceeds maxSide. Smaller images
// are returned unchanged.
func fitImage(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}

	if w >= h {
		h = h * maxSide / w
		w = maxSide
	} else {
		w = w * maxSide / h
		h = maxSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// CloudinaryImageStore uploads to Cloudinary and stores the secure URL.
type CloudinaryImageStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryImageStore(cloudinaryURL string) (*CloudinaryImageStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryImageStore{cld: cld}, nil
}

func (s *CloudinaryImageStore) Save(ctx context.Context, r io.Reader, filename string, kind ImageKind) (string, error) {
	if _, err := checkImageExt(filename); err != nil {
		return "", err
	}

	side := kind.MaxSide()
	resp, err := s.cld.Upload.Upload(ctx, io.LimitReader(r, MaxImageSize+1), uploader.UploadParams{
		Folder:         "inkwell/" + kind.folder(),
		PublicID:       uuid.NewString(),
		Overwrite:      api.Bool(false),
		Transformation: fmt.Sprintf("c_limit,w_%d,h_%d", side, side),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryImageStore) Delete(ctx context.Context, name string) error {
	if !strings.HasPrefix(name, "http") {
		return nil
	}
	publicID, err := publicIDFromURL(name)
	if err != nil {
		return err
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary delete: %w", err)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// publicIDFromURL extracts "folder/name" from
// https://res.cloudinary.com/<cloud>/image/upload/v123/folder/name.jpg
func publicIDFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if part != "upload" || i+1 >= len(parts) {
			continue
		}
		rest := parts[i+1:]
		if versionSegment.MatchString(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			break
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, filepath.Ext(id)), nil
	}
	return "", errors.New("failed to extract public ID from URL")
}
