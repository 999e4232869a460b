package extract

import "github.com/healthai/sitegen/internal/models"

// SheetSpec binds one sheet to its entity kind and header aliases.
type SheetSpec struct {
	Kind  models.Kind
	Sheet string
	// Headers maps normalized header text to canonical field names.
	Headers map[string]string
}

// Specs returns the three sheet specifications in pipeline order. The
// aliases cover the sheet-prefixed spellings the workbook has carried
// (including the long-lived "publicatoin" typo) alongside the bare field
// names.
func Specs() []SheetSpec {
	return []SheetSpec{
		{
			Kind:  models.KindResearchers,
			Sheet: "Researchers",
			Headers: map[string]string{
				"researcherid":             "id",
				"researchername":           "name",
				"researchertitle":          "title",
				"researcherabout":          "about",
				"researcherprojectids":     "projectIds",
				"researcherpublicationid":  "publicationIds",
				"researcherpublicationids": "publicationIds",
				"researcherimage":          "image",
				"id":                       "id",
				"name":                     "name",
				"title":                    "title",
				"about":                    "about",
				"projectids":               "projectIds",
				"publicationids":           "publicationIds",
				"image":                    "image",
			},
		},
		{
			Kind:  models.KindProjects,
			Sheet: "Projects",
			Headers: map[string]string{
				"projectid":             "id",
				"projectname":           "name",
				"projecttitle":          "title",
				"projectabout":          "about",
				"projectpillar":         "pillar",
				"projectresearcherids":  "researcherIds",
				"projectpublicationid":  "publicationIds",
				"projectpublicationids": "publicationIds",
				"projectimage":          "image",
				"id":             "id",
				"name":           "name",
				"title":          "title",
				"about":          "about",
				"pillar":         "pillar",
				"researcherids":  "researcherIds",
				"publicationids": "publicationIds",
				"image":          "image",
			},
		},
		{
			Kind:  models.KindPublications,
			Sheet: "Publications",
			Headers: map[string]string{
				"publicatoinid": "id", // typo in sheet
				"publicationid":            "id",
				"publicationname":          "name",
				"publicationjournal":       "journal",
				"publicationabstract":      "abstract",
				"publicationurl":           "publicationUrl",
				"publicationresearcherids": "researcherIds",
				"publicationprojectid":     "projectIds",
				"publicationprojectids":    "projectIds",
				"publicationimage":         "image",
				"id":            "id",
				"name":          "name",
				"journal":       "journal",
				"abstract":      "abstract",
				"researcherids": "researcherIds",
				"projectids":    "projectIds",
				"image":         "image",
			},
		},
	}
}
