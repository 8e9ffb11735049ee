package app

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0x3st/quizit/internal/domain"
)

var allowedExtensions = map[string]bool{
	"pdf": true, "pptx": true, "txt": true, "md": true,
}

// magicBytes guard binary uploads against renamed files.
var magicBytes = map[string][]byte{
	"pdf":  {0x25, 0x50, 0x44, 0x46},
	"pptx": {0x50, 0x4b, 0x03, 0x04},
}

// BlobStore keeps the original upload bytes so a material can be re-parsed.
type BlobStore interface {
	Put(name string, data []byte) error
	Get(name string) ([]byte, error)
	Delete(name string) error
}

// Upload is a validated incoming file.
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

// MaterialService owns material intake and the parse lifecycle
// UPLOADED -> PARSING -> {PARSED, FAILED}. Extraction runs detached; its
// outcome is observed through the material's parse status.
type MaterialService struct {
	materials MaterialStore
	blobs     BlobStore
	extractor TextExtractor
	maxSize   int64

	spawn func(func())
}

func NewMaterialService(materials MaterialStore, blobs BlobStore, extractor TextExtractor, maxSizeMB int) *MaterialService {
	if maxSizeMB <= 0 {
		maxSizeMB = 25
	}
	return &MaterialService{
		materials: materials,
		blobs:     blobs,
		extractor: extractor,
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		spawn:     func(f func()) { go f() },
	}
}

// SetSpawner is test-only: it makes the detached parse task synchronous.
func (s *MaterialService) SetSpawner(spawn func(func())) { s.spawn = spawn }

// Register validates and stores an upload, then kicks off text extraction.
// Identical content (by sha256) is rejected as a duplicate.
func (s *MaterialService) Register(ctx context.Context, up Upload) (domain.Material, error) {
	if len(up.Data) == 0 {
		return domain.Material{}, domain.Validationf("no file provided")
	}
	ext := strings.ToLower(strings.TrimPrefix(extension(up.Filename), "."))
	if !allowedExtensions[ext] {
		return domain.Material{}, domain.Validationf("allowed extensions: pdf, pptx, txt, md")
	}
	if int64(len(up.Data)) > s.maxSize {
		return domain.Material{}, domain.Validationf("file size must be under %dMB", s.maxSize/1024/1024)
	}
	if magic, ok := magicBytes[ext]; ok && !bytes.HasPrefix(up.Data, magic) {
		return domain.Material{}, domain.Validationf("file content does not match extension")
	}

	sum := sha256.Sum256(up.Data)
	sha := hex.EncodeToString(sum[:])
	if existing, err := s.materials.FindMaterialBySHA256(ctx, sha); err != nil {
		return domain.Material{}, err
	} else if existing != nil {
		return domain.Material{}, domain.ErrDuplicateMaterial
	}

	now := time.Now()
	material := domain.Material{
		ID:           uuid.NewString(),
		Filename:     fmt.Sprintf("%s.%s", sha[:8], ext),
		OriginalName: up.Filename,
		Extension:    ext,
		MimeType:     up.MimeType,
		FileSize:     int64(len(up.Data)),
		SHA256:       sha,
		ParseStatus:  domain.ParseParsing,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.blobs.Put(material.Filename, up.Data); err != nil {
		return domain.Material{}, err
	}
	if err := s.materials.CreateMaterial(ctx, &material); err != nil {
		return domain.Material{}, err
	}

	s.spawn(func() { s.parse(context.Background(), material.ID, material.Filename, material.Extension, up.Data) })
	return material, nil
}

// Reparse re-runs extraction on the stored bytes, resetting the material to
// PARSING first.
func (s *MaterialService) Reparse(ctx context.Context, id string) (domain.Material, error) {
	material, err := s.materials.GetMaterial(ctx, id)
	if err != nil {
		return domain.Material{}, err
	}
	data, err := s.blobs.Get(material.Filename)
	if err != nil {
		return domain.Material{}, fmt.Errorf("read stored upload: %w", err)
	}
	if err := s.materials.SetMaterialParsing(ctx, id); err != nil {
		return domain.Material{}, err
	}
	material.ParseStatus = domain.ParseParsing
	s.spawn(func() { s.parse(context.Background(), material.ID, material.Filename, material.Extension, data) })
	return material, nil
}

func (s *MaterialService) parse(ctx context.Context, id, filename, ext string, data []byte) {
	text, err := s.extractor.Extract(data, ext)
	if err != nil {
		log.Printf("material %s: parse failed: %v", id, err)
		if uerr := s.materials.SetMaterialParseFailed(ctx, id, err.Error()); uerr != nil {
			log.Printf("material %s: recording parse failure: %v", id, uerr)
		}
		return
	}
	content := NormalizeText(text)
	if err := s.materials.SetMaterialParsed(ctx, id, content); err != nil {
		log.Printf("material %s: recording parsed content: %v", id, err)
		return
	}
	log.Printf("material %s: parsed %s (%d chars)", id, filename, len(content))
}

// Get returns one material.
func (s *MaterialService) Get(ctx context.Context, id string) (domain.Material, error) {
	return s.materials.GetMaterial(ctx, id)
}

// List returns a page of materials, newest first, plus the total count.
func (s *MaterialService) List(ctx context.Context, p Page) ([]domain.Material, int, error) {
	return s.materials.ListMaterials(ctx, p.Clamped())
}

// Delete removes a material and its stored bytes; quizzes cascade.
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	material, err := s.materials.GetMaterial(ctx, id)
	if err != nil {
		return err
	}
	if err := s.materials.DeleteMaterial(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(material.Filename); err != nil {
		log.Printf("material %s: removing stored upload: %v", id, err)
	}
	return nil
}

func extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx:]
}
