package errors

import (
	"strings"
	"unicode"
)

// ValidateLookName validates a look name before save.
// Names are user-supplied free text, so the rules are conservative:
//   - No empty or all-whitespace names
//   - No control characters
//   - Maximum length of 120 characters
func ValidateLookName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidLook, "look name cannot be empty")
	}

	if len(name) > 120 {
		return New(ErrCodeInvalidLook, "look name too long (max 120 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLook, "look name contains invalid control characters")
		}
	}

	return nil
}

// ValidateItemID validates a wardrobe item identifier.
// Item ids are opaque strings minted by the closet subsystem, but they end up
// in cache keys and persisted records, so unsafe characters are rejected here.
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidItem, "item id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItem, "item id contains invalid control characters")
		}
	}

	// Ids are used as path and key components; reject separators outright.
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidItem, "item id cannot contain path separators: %q", id)
	}

	return nil
}

// ValidateImageRef validates an opaque image reference.
// A reference is either an http(s) URL or an inline data URI; anything else
// is rejected before it reaches the resolver.
func ValidateImageRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidImageRef, "image reference cannot be empty")
	}

	if strings.HasPrefix(ref, "data:image/") {
		return nil
	}

	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return New(ErrCodeInvalidImageRef, "image reference must be an http(s) URL or data URI")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
