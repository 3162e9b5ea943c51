package sites

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SiteNotFoundError represents an error when a site is not found
type SiteNotFoundError struct {
	Token string
}

func (e *SiteNotFoundError) Error() string {
	return fmt.Sprintf("site not found for token: %s", e.Token)
}

// NewSiteNotFoundError creates a new SiteNotFoundError
func NewSiteNotFoundError(token string) *SiteNotFoundError {
	return &SiteNotFoundError{Token: token}
}

// DuplicateDomainError represents an error when a domain is already registered
type DuplicateDomainError struct {
	Domain string
}

func (e *DuplicateDomainError) Error() string {
	return fmt.Sprintf("domain already registered: %s", e.Domain)
}

// NewDuplicateDomainError creates a new DuplicateDomainError
func NewDuplicateDomainError(domain string) *DuplicateDomainError {
	return &DuplicateDomainError{Domain: domain}
}

// Site represents a tracked site
type Site struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Domain    string    `gorm:"unique;not null" json:"domain"` // Base domain, e.g., "example.com"
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	GroupName string    `json:"group_name"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateToken returns a random URL-safe site token.
func GenerateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate site token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GetSiteByID retrieves a site by its ID
func GetSiteByID(db *gorm.DB, id uint) (Site, error) {
	var site Site
	if err := db.First(&site, id).Error; err != nil {
		return Site{}, err
	}
	return site, nil
}

// GetSiteByToken retrieves a site by its collection token.
// It accepts a transaction to be used as part of a larger transaction process
func GetSiteByToken(tx *gorm.DB, token string) (*Site, error) {
	var site Site
	if err := tx.Where("token = ?", token).First(&site).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewSiteNotFoundError(token)
		}
		return nil, fmt.Errorf("unexpected error querying site: %w", err)
	}
	return &site, nil
}

// GetSiteByDomain retrieves a site by its domain
func GetSiteByDomain(db *gorm.DB, domain string) (*Site, error) {
	var site Site
	if err := db.Where("domain = ?", domain).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// GetAllSites retrieves all sites ordered by group then name
func GetAllSites(db *gorm.DB) ([]Site, error) {
	var all []Site
	if err := db.Order("group_name, name").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to get sites: %w", err)
	}
	return all, nil
}

// CreateSite creates a new site, assigning its collection token.
// Returns a DuplicateDomainError when the domain is already registered.
func CreateSite(db *gorm.DB, site *Site) error {
	site.CreatedAt = time.Now().UTC()

	if site.Name == "" {
		site.Name = site.Domain
	}

	if site.Token == "" {
		token, err := GenerateToken()
		if err != nil {
			return err
		}
		site.Token = token
	}

	if err := db.Create(site).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return NewDuplicateDomainError(site.Domain)
		}
		return err
	}
	return nil
}

// UpdateSite updates an existing site
func UpdateSite(db *gorm.DB, site *Site) error {
	return db.Save(site).Error
}

// DeleteSite deletes a site and all of its collected traffic in one transaction
func DeleteSite(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM page_views WHERE site_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete page views: %w", err)
		}
		if err := tx.Exec("DELETE FROM events WHERE site_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}
		result := tx.Delete(&Site{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
