// SPDX-License-Identifier: MIT

package analytics

// Category groups a metric header in the detail table.
type Category struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
}

const (
	mainSource = "KAYNAĞIN TÜRÜNE GÖRE"
	mainTarget = "HEDEFİN TÜRÜNE GÖRE"
	mainEvent  = "OLAYIN TÜRÜNE GÖRE"
)

type categoryGroup struct {
	cat     Category
	headers []string
}

// DetailCategories maps metric headers to their table group. Headers not
// listed stay ungrouped.
var DetailCategories = index([]categoryGroup{
	{Category{mainSource, "Bireysel Kimlik"}, []string{
		"Bireysel Kimlikle Tek Kişinin Gerçekleştirdiği",
		"Bireysel Kimlikle Grup Halinde Gerçekleştirilen",
		"Kaç Kişi Tarafından Gerçekleştirildiği Bilinmeyen",
	}},
	{Category{mainSource, "Kurumsal Kimlik"}, []string{
		"Kurumsal Kimlikle Tek Kişinin Gerçekleştirdiği",
		"Kurumsal Kimlikle Grup Halinde Gerçekleştirilen",
		"Kurumlar Tarafından Gerçekleştirilen",
	}},
	{Category{mainTarget, "Şahıs"}, []string{
		"Kadınları Hedef Alan",
		"Erkekleri Hedef Alan",
		"Kadın ve Erkeklerin Bir Arada Bulunduğu Grupları Hedef Alan",
	}},
	{Category{mainTarget, "Kamu/Şahıs Malı"}, []string{
		"Camileri Hedef Alan",
		"Diğer Kamu Mallarını Hedef Alan",
		"Şahıs Mallarını Hedef Alan",
	}},
	{Category{mainTarget, "İslam/Kutsal"}, []string{
		"Kur’an-I Kerimi Hedef Alan",
		"Kur’an-ı Kerimi Hedef Alan",
		"İslam ve Kutsal Değerleri Hedef Alan",
	}},
	{Category{mainEvent, "Şahsa Yönelik"}, []string{
		"Müslümanlara Yönelik Fiziksel Şiddet İçeren",
		"Müslümanlara Yönelik Sözlü Şiddet İçeren",
		"Müslümanlara Yönelik Yazılı Şiddet İçeren",
		"Müslümanlara Yönelik Ayrımcılık İçeren",
	}},
	{Category{mainEvent, "Şahıs/Kamu Malına Yönelik"}, []string{
		"Şahıs/Kamu Malına Yönelik Maddi Zarar İçeren",
		"Şahıs/Kamu Malına Yönelik Yazılı Zarar İçeren",
		"Şahıs/Kamu Malına Yönelik Engelleme/Kapatma İçeren",
		"Şahıs/Kamu Malına Yönelik Sembolik Hakaret İçeren",
	}},
	{Category{mainEvent, "İslam’a Yönelik"}, []string{
		"İslami Değerlere Yönelik Nefret Söylemi/Suçu İçeren",
		"İslami Değerler Aleyhine Yapılan Kanun/Yönetmelik İçeren",
	}},
})

func index(groups []categoryGroup) map[string]Category {
	out := make(map[string]Category)
	for _, g := range groups {
		for _, h := range g.headers {
			out[h] = g.cat
		}
	}
	return out
}
