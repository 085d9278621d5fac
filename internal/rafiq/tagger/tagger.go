// Package tagger assigns department tags to document text by keyword match.
package tagger

import (
	"sort"
	"strings"
)

// GeneralDepartment is assigned when no department keyword matches.
const GeneralDepartment = "General"

// Department names.
const (
	Finance        = "Finance"
	MonetaryPolicy = "Monetary Policy & Banking"
	Currency       = "Currency"
	Legal          = "Legal & Compliance"
	ITFinance      = "IT / Finance"
)

// keywords maps each department to its English keyword list. Matching is
// case-insensitive substring search over the document text.
var keywords = map[string][]string{
	Finance: {
		"financial planning", "budgeting", "accounting", "financial reporting",
		"revenue", "expense", "finance", "financial", "treasury", "investment",
	},
	MonetaryPolicy: {
		"monetary policy", "banking supervision", "financial stability", "policy",
		"banking", "supervision", "stability", "monetary", "interest rates",
		"economic analysis",
	},
	Currency: {
		"banknotes", "coins", "mint", "currency", "rial", "exchange",
		"foreign exchange", "currency management", "exchange rate", "forex",
		"currency operations",
	},
	Legal: {
		"legal frameworks", "regulatory compliance", "risk management",
		"regulation", "law", "compliance", "legal", "policy", "framework",
		"governance",
	},
	ITFinance: {
		"information technology", "financial technology", "digital banking",
		"network", "software", "hardware", "technology", "it", "digital",
		"system", "security",
	},
}

// keywordsArabic mirrors keywords for Arabic text.
var keywordsArabic = map[string][]string{
	Finance: {
		"التخطيط المالي", "الميزانيات", "المحاسبة", "التقارير المالية",
		"الإيرادات", "المصروفات", "المالية", "الخزينة", "الاستثمار",
		"التحليل المالي",
	},
	MonetaryPolicy: {
		"السياسة النقدية", "الإشراف المصرفي", "الاستقرار المالي",
		"السياسة", "العمل المصرفي", "الإشراف", "الاستقرار", "النقدي",
		"أسعار الفائدة", "التحليل الاقتصادي",
	},
	Currency: {
		"الأوراق النقدية", "العملات المعدنية", "سك العملة", "العملة",
		"الريال", "الصرف", "صرف العملات الأجنبية", "إدارة العملة",
		"سعر الصرف", "العمليات النقدية",
	},
	Legal: {
		"الأطر القانونية", "الامتثال التنظيمي", "إدارة المخاطر",
		"التنظيم", "القانون", "الامتثال", "القانوني", "السياسة",
		"الإطار التنظيمي", "الحوكمة",
	},
	ITFinance: {
		"تكنولوجيا المعلومات", "التكنولوجيا المالية", "الخدمات المصرفية الرقمية",
		"الشبكات", "البرمجيات", "الأجهزة", "التكنولوجيا", "تقنية المعلومات",
		"الرقمية", "النظام", "الأمن",
	},
}

// Tagger tags document text with the departments it covers.
type Tagger struct{}

// New creates a Tagger.
func New() *Tagger {
	return &Tagger{}
}

// Tag returns the departments whose keywords appear in text, in stable
// order. Both English and Arabic keyword sets are consulted. Text with no
// matches is tagged GeneralDepartment; empty text gets no tags.
func (t *Tagger) Tag(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	matched := make(map[string]struct{})

	for dept, kws := range keywords {
		for _, kw := range kws {
			if containsWordish(lower, kw) {
				matched[dept] = struct{}{}
				break
			}
		}
	}
	for dept, kws := range keywordsArabic {
		if _, ok := matched[dept]; ok {
			continue
		}
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				matched[dept] = struct{}{}
				break
			}
		}
	}

	if len(matched) == 0 {
		return []string{GeneralDepartment}
	}

	depts := make([]string, 0, len(matched))
	for d := range matched {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	return depts
}

// containsWordish reports whether kw occurs in lower. Keywords of one or two
// letters ("it") must match a whole word to avoid firing on every document.
func containsWordish(lower, kw string) bool {
	if len(kw) > 2 {
		return strings.Contains(lower, kw)
	}
	for _, field := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if field == kw {
			return true
		}
	}
	return false
}

// Departments returns all known department names in stable order, without
// GeneralDepartment.
func Departments() []string {
	depts := make([]string, 0, len(keywords))
	for d := range keywords {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	return depts
}

// focusAreas describes what each department works on, used when filling
// response templates.
var focusAreas = map[string]string{
	Finance:        "financial planning, budgeting, accounting, and financial reporting",
	MonetaryPolicy: "monetary policy formulation, banking supervision, and financial stability",
	Currency:       "currency management, exchange rate policies, and currency operations",
	Legal:          "legal frameworks, regulatory compliance, and risk management",
	ITFinance:      "information technology systems, financial technology, and digital banking",
}

// focusAreasArabic mirrors focusAreas in Arabic.
var focusAreasArabic = map[string]string{
	Finance:        "التخطيط المالي والميزانيات والمحاسبة والتقارير المالية",
	MonetaryPolicy: "صياغة السياسة النقدية والإشراف المصرفي والاستقرار المالي",
	Currency:       "إدارة العملة وسياسات سعر الصرف وعمليات العملة",
	Legal:          "الأطر القانونية والامتثال التنظيمي وإدارة المخاطر",
	ITFinance:      "أنظمة تكنولوجيا المعلومات والتكنولوجيا المالية والخدمات المصرفية الرقمية",
}

// Focus returns a short English description of a department's focus areas.
func Focus(department string) string {
	if focus, ok := focusAreas[department]; ok {
		return focus
	}
	return "departmental operations and policies"
}

// FocusArabic returns the department focus description in Arabic.
func FocusArabic(department string) string {
	if focus, ok := focusAreasArabic[department]; ok {
		return focus
	}
	return "عمليات وسياسات القسم"
}
