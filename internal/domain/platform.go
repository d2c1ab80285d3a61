package domain

import (
	"github.com/dom/game-catalog/internal/document"
	"gorm.io/datatypes"
)

type Platform struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:127;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex;not null"`

	// DefaultInstaller is an installer template used for every game on the
	// platform that has no authored installer.
	DefaultInstaller datatypes.JSON `json:"defaultInstaller,omitempty" gorm:"type:jsonb"`
}

// DefaultInstallerTemplate returns a fresh copy of the template. ok is false
// when the platform has no template or it is not a non-empty mapping.
func (p *Platform) DefaultInstallerTemplate() (template *document.Map, ok bool) {
	if len(p.DefaultInstaller) == 0 {
		return nil, false
	}
	m, ok := document.ParseMap(p.DefaultInstaller)
	if !ok || m.Len() == 0 {
		return nil, false
	}
	return m, true
}

func (p *Platform) HasDefaultInstaller() bool {
	_, ok := p.DefaultInstallerTemplate()
	return ok
}

// SetDefaultInstaller stores template, or clears it when template is nil.
func (p *Platform) SetDefaultInstaller(template *document.Map) error {
	if template == nil {
		p.DefaultInstaller = nil
		return nil
	}
	raw, err := template.JSON("")
	if err != nil {
		return err
	}
	p.DefaultInstaller = datatypes.JSON(raw)
	return nil
}
