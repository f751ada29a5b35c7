package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
)

// SentDir is where spreadsheets go after a successful submission.
const SentDir = "Enviados"

// unitAffixes are dropped from unit names before they become part of a file
// name.
var unitAffixes = []string{"PSM ", " - LAURO RIBAS BRAGA"}

// ArchiveFile moves src into dir. An existing file of the same name is kept
// and the new one gets a _YYYYMMDD_HHMMSS suffix.
func ArchiveFile(src, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	target := UniqueTarget(filepath.Join(dir, filepath.Base(src)), now)
	if err := os.Rename(src, target); err != nil {
		// cross-device moves fall back to copy and delete
		if err := copyFile(src, target); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}
	return target, nil
}

// UniqueTarget returns dest, or dest with a timestamp suffix when dest exists.
func UniqueTarget(dest string, now time.Time) string {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext)
}

// PayloadFileName names the JSON copy of a payload, e.g.
// sicap_enviar_Santana_out.json.
func PayloadFileName(unit, month string) string {
	name := unit
	for _, affix := range unitAffixes {
		name = strings.ReplaceAll(name, affix, "")
	}
	name = utils.SanitizeFilename(strings.TrimSpace(name))
	if name == "" {
		name = month
	}
	return fmt.Sprintf("sicap_enviar_%s_%s.json", name, month)
}

// WritePayloadFile writes the payload as indented UTF-8 JSON.
func WritePayloadFile(path string, payload *models.Payload) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
