package domain

import "strings"

type Category struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	NameAr string `json:"nameAr,omitempty" yaml:"nameAr"`
	Icon   string `json:"icon,omitempty" yaml:"icon"`
}

func (c Category) LocalizedName(lang string) string {
	if strings.EqualFold(lang, "ar") && c.NameAr != "" {
		return c.NameAr
	}
	return c.Name
}
