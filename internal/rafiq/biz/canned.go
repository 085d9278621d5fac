package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
)

// TemplateTier is the terminal tier. It always answers with a department
// aware template, so the chain never returns empty-handed.
type TemplateTier struct{}

// NewTemplateTier creates a TemplateTier.
func NewTemplateTier() *TemplateTier { return &TemplateTier{} }

// Name implements Responder.
func (t *TemplateTier) Name() string { return SourceTemplate }

// TryAnswer implements Responder. Always returns an answer.
func (t *TemplateTier) TryAnswer(ctx context.Context, question, lang string, departments []string) (*Answer, bool, error) {
	if lang == "" {
		lang = translate.DetectLanguage(question)
	}
	dept := tagger.GeneralDepartment
	if len(departments) > 0 {
		dept = departments[0]
	}

	lower := strings.ToLower(question)
	var text string
	switch {
	case lang == translate.LangArabic && (strings.Contains(lower, "oman central bank") || strings.Contains(question, "البنك المركزي العماني")):
		text = fmt.Sprintf("البنك المركزي العماني هو البنك المركزي لسلطنة عمان، تأسس في عام 1974. يقع مقره الرئيسي في مسقط ويدير السياسة النقدية للبلاد. في قسم %s، نركز على %s. كيف يمكنني مساعدتك أكثر؟",
			dept, tagger.FocusArabic(dept))
	case lang == translate.LangArabic && (strings.Contains(lower, "finance report") || strings.Contains(question, "تقرير مالي")):
		text = fmt.Sprintf("تقرير مالي: في قسم %s، نركز على %s. يمكنني مساعدتك في تحليل التقارير المالية والميزانيات والتقارير المحاسبية. ما هو السؤال المحدد الذي لديك حول التقرير المالي؟",
			dept, tagger.FocusArabic(dept))
	case lang == translate.LangArabic:
		text = fmt.Sprintf("مرحباً! أنا مساعدك الذكي في قسم %s في البنك المركزي العماني. أسعد لمساعدتك في أي أسئلة لديك حول عملك أو شؤون القسم. كيف يمكنني مساعدتك اليوم؟", dept)
	case strings.Contains(lower, "oman central bank"):
		text = fmt.Sprintf("The Central Bank of Oman (CBO) is the central bank of the Sultanate of Oman, established in 1974. It is headquartered in Muscat and manages the country's monetary policy. In the %s department, we focus on %s. How can I assist you further?",
			dept, tagger.Focus(dept))
	case strings.Contains(lower, "finance report"):
		text = fmt.Sprintf("Finance Report: In the %s department, we focus on %s. I can help you analyze financial reports, budgets, and accounting statements. What specific question do you have about the finance report?",
			dept, tagger.Focus(dept))
	default:
		text = fmt.Sprintf("Hello! I'm your AI assistant for the %s department at Oman Central Bank. I'm here to help you with any questions about your work or department matters. How can I assist you today?", dept)
	}

	answer := &Answer{
		Text:        text,
		Source:      SourceTemplate,
		Language:    lang,
		Departments: departments,
	}
	if lang != translate.LangArabic {
		answer.TextEN = text
	}
	return answer, true, nil
}
