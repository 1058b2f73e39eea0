package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/storage"
)

var (
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
	rollRegex  = regexp.MustCompile(`^[A-Za-z0-9/-]{4,20}$`)
)

func validatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

func validateRollNumber(roll string) error {
	if !rollRegex.MatchString(strings.TrimSpace(roll)) {
		return ErrInvalidRollNumber
	}
	return nil
}

// validateGenderForEvent enforces the event's gender policy before any
// registration row is written.
func validateGenderForEvent(event *models.Event, gender string) error {
	switch event.AllowedGender {
	case models.GenderAny, "":
		return nil
	case models.GenderMale, models.GenderFemale:
		if !strings.EqualFold(string(event.AllowedGender), gender) {
			return ErrGenderNotPermitted
		}
		return nil
	default:
		return ErrEventInvalidGenderPolicy
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toTeamMember(p *models.Profile) models.TeamMember {
	return models.TeamMember{
		ProfileID:  p.ID,
		FullName:   p.FullName,
		RollNumber: p.RollNumber,
		Department: p.Department,
		Gender:     p.Gender,
	}
}

func populateEventImageURLs(event *models.Event, uploader storage.FileUploader) {
	if event == nil || uploader == nil {
		return
	}
	if event.CoverKey != nil && *event.CoverKey != "" {
		if url := uploader.GetPublicURL(*event.CoverKey); url != "" {
			event.CoverURL = &url
		}
	}
	if event.QRKey != nil && *event.QRKey != "" {
		if url := uploader.GetPublicURL(*event.QRKey); url != "" {
			event.QRURL = &url
		}
	}
}

func populateScreenshotURL(reg *models.Registration, uploader storage.FileUploader) {
	if reg == nil || uploader == nil || reg.ScreenshotKey == nil || *reg.ScreenshotKey == "" {
		return
	}
	if url := uploader.GetPublicURL(*reg.ScreenshotKey); url != "" {
		reg.ScreenshotURL = &url
	}
}

// GetExtensionFromContentType maps an image content type to a file
// extension for storage keys.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}
