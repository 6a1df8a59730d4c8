package db

import "gorm.io/gorm"

// SectionType 标识资料页上的动态区块类型。
type SectionType string

const (
	SectionFormation   SectionType = "formation"
	SectionExperience  SectionType = "experience"
	SectionCompetences SectionType = "competences"
	SectionStack       SectionType = "stack"
	SectionInterets    SectionType = "interets"
	SectionValeurs     SectionType = "valeurs"
	SectionCustom      SectionType = "custom"
)

// SectionTypes lists the accepted section types in display order.
var SectionTypes = []SectionType{
	SectionFormation,
	SectionExperience,
	SectionCompetences,
	SectionStack,
	SectionInterets,
	SectionValeurs,
	SectionCustom,
}

// Valid reports whether t is a known section type.
func (t SectionType) Valid() bool {
	for _, known := range SectionTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Section 属于单个资料，随资料一起删除。
type Section struct {
	gorm.Model
	ProfileID uint        `gorm:"not null;index"`
	Type      SectionType `gorm:"size:20;not null"`
	Title     string      `gorm:"size:200;not null"`
	IsActive  bool
	Order     int `gorm:"column:display_order;default:0"`
	Items     []SectionItem
}

// SectionItem 是区块中的一行条目。
type SectionItem struct {
	gorm.Model
	SectionID uint   `gorm:"not null;index"`
	IconURL   string `gorm:"size:500"`
	Title     string `gorm:"size:255;not null"`
	Subtitle  string `gorm:"size:500"`
	Date      string `gorm:"size:100"`
	URL       string `gorm:"size:500"`
	Details   string `gorm:"type:text"`
	Order     int    `gorm:"column:display_order;default:0"`
}

// Education 记录一段教育经历
type Education struct {
	gorm.Model
	ProfileID      uint   `gorm:"not null;index"`
	Title          string `gorm:"size:255;not null"`
	Date           string `gorm:"size:100"`
	Institution    string `gorm:"size:255"`
	InstitutionURL string `gorm:"size:500"`
	IconURL        string `gorm:"size:500"`
	Details        string `gorm:"type:text"`
	Order          int    `gorm:"column:display_order;default:0"`
}

// Experience 记录一段工作经历
type Experience struct {
	gorm.Model
	ProfileID  uint   `gorm:"not null;index"`
	Title      string `gorm:"size:255;not null"`
	Date       string `gorm:"size:100"`
	Company    string `gorm:"size:255"`
	CompanyURL string `gorm:"size:500"`
	IconURL    string `gorm:"size:500"`
	Details    string `gorm:"type:text"`
	Order      int    `gorm:"column:display_order;default:0"`
}
