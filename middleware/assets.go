package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Static files whose URLs carry a content hash for cache busting.
var versionedAssets = []string{
	"css/style.css",
	"images/favicon.png",
	"js/app.js",
}

var (
	assetVersions     map[string]string
	assetVersionsOnce sync.Once
)

// InitAssetVersions computes file hashes under staticDir at startup
func InitAssetVersions(staticDir string) {
	assetVersionsOnce.Do(func() {
		assetVersions = computeVersions(staticDir)
		log.Info().Int("files", len(assetVersions)).Msg("Asset versions initialized")
	})
}

func computeVersions(staticDir string) map[string]string {
	versions := make(map[string]string, len(versionedAssets))
	for _, name := range versionedAssets {
		version := computeFileHash(filepath.Join(staticDir, filepath.FromSlash(name)))
		if version == "" {
			version = "1"
		}
		versions[name] = version
	}
	return versions
}

// computeFileHash returns the first 8 hex characters of the file's SHA-256
func computeFileHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to open file for hashing")
		return ""
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to hash file")
		return ""
	}

	return hex.EncodeToString(hash.Sum(nil))[:8]
}

// GetAssetVersion returns the version hash of a static file, "1" when unknown.
// ctx is accepted for parity with the other template helpers.
func GetAssetVersion(ctx context.Context, name string) string {
	if v, ok := assetVersions[name]; ok {
		return v
	}
	return "1"
}

// AssetPath returns the cache-busted URL of a static file
func AssetPath(ctx context.Context, name string) string {
	return "/static/" + name + "?v=" + GetAssetVersion(ctx, name)
}

// StaticCache marks /static responses cacheable. URLs carrying the content
// version from AssetPath never change, so they are cached for a year; other
// static files (portfolio images) for a day.
func StaticCache() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/static/") {
				cache := "public, max-age=86400"
				if c.QueryParam("v") != "" {
					cache = "public, max-age=31536000, immutable"
				}
				c.Response().Header().Set("Cache-Control", cache)
			}
			return next(c)
		}
	}
}
