package biz

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
)

// patternCutoff is the minimum sequence similarity for a pattern match.
const patternCutoff = 0.6

// patternCategory holds trigger phrases and response templates for one
// topic. Templates may reference {department} and {focus_area}.
type patternCategory struct {
	name      string
	questions []string
	responses []string
}

// English pattern knowledge base.
var patternsEnglish = []patternCategory{
	{
		name:      "greetings",
		questions: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "how are you"},
		responses: []string{
			"Hello! I'm your AI assistant for the {department} department at Oman Central Bank. How can I help you today?",
			"Hi there! I'm here to assist you with any questions about your work in the {department} department. What would you like to know?",
			"Good day! I'm your AI assistant. How can I help you with {department} department matters today?",
		},
	},
	{
		name:      "finance",
		questions: []string{"what is finance", "what is financial", "finance definition", "financial planning", "budgeting", "accounting"},
		responses: []string{
			"Finance is the management of money and investments. In the {department} department, we focus on financial planning, budgeting, accounting, and financial reporting. We ensure proper financial controls and compliance with banking regulations.",
			"Financial management involves planning, organizing, directing, and controlling financial activities. At the Central Bank of Oman, our {department} department handles financial analysis, risk assessment, and regulatory compliance.",
			"Finance encompasses all activities related to money management, including budgeting, investing, lending, and financial reporting. In our {department} department, we maintain financial stability and ensure regulatory compliance.",
		},
	},
	{
		name:      "banking",
		questions: []string{"what is banking", "banking system", "central bank", "monetary policy", "banking regulations"},
		responses: []string{
			"Banking is the business of accepting deposits and lending money. The Central Bank of Oman (CBO) is responsible for monetary policy, banking supervision, and maintaining financial stability. Our {department} department plays a crucial role in these operations.",
			"A central bank manages a country's currency, money supply, and interest rates. The CBO, established in 1974, oversees Oman's banking system and ensures financial stability. The {department} department contributes to these critical functions.",
			"Banking involves financial intermediation between savers and borrowers. The Central Bank of Oman regulates the banking sector and implements monetary policy. Our {department} department supports these regulatory and operational functions.",
		},
	},
	{
		name:      "oman_central_bank",
		questions: []string{"oman central bank", "cbo", "central bank of oman", "muscat bank", "oman bank"},
		responses: []string{
			"The Central Bank of Oman (CBO) is the central bank of the Sultanate of Oman, established in 1974. It is headquartered in Muscat and manages the country's monetary policy. In the {department} department, we focus on {focus_area}. How can I assist you further?",
			"CBO is Oman's central bank responsible for monetary policy, banking supervision, and financial stability. Located in Muscat, it was established in 1974. Our {department} department specializes in {focus_area}. What specific information do you need?",
			"The Central Bank of Oman serves as the country's monetary authority, regulating banks and managing currency. The {department} department at CBO focuses on {focus_area}. How can I help you today?",
		},
	},
	{
		name:      "general_help",
		questions: []string{"help", "what can you do", "how can you help", "what do you do", "assistance"},
		responses: []string{
			"I'm your AI assistant for the {department} department at Oman Central Bank. I can help you with questions about banking, finance, regulations, and department-specific matters. I can also search through uploaded documents and provide translations.",
			"I can assist you with various tasks including answering questions about banking and finance, searching through department documents, translating text, and providing information about Central Bank operations. What would you like help with?",
			"As your AI assistant, I can help with financial analysis, document search, translation services, and answering questions about banking regulations and Central Bank policies. How can I assist you today?",
		},
	},
}

// Arabic pattern knowledge base.
var patternsArabic = []patternCategory{
	{
		name:      "greetings",
		questions: []string{"مرحبا", "السلام عليكم", "أهلا", "صباح الخير", "مساء الخير", "كيف حالك", "مرحبا بك"},
		responses: []string{
			"مرحباً! أنا مساعدك الذكي في قسم {department} في البنك المركزي العماني. كيف يمكنني مساعدتك اليوم؟",
			"أهلاً وسهلاً! أنا هنا لمساعدتك في أي أسئلة حول عملك في قسم {department}. ماذا تريد أن تعرف؟",
			"السلام عليكم! أنا مساعدك الذكي. كيف يمكنني مساعدتك في شؤون قسم {department} اليوم؟",
		},
	},
	{
		name:      "finance",
		questions: []string{"ما هو المال", "ما هو المالي", "تعريف المال", "التخطيط المالي", "الميزانية", "المحاسبة"},
		responses: []string{
			"المال هو إدارة الأموال والاستثمارات. في قسم {department}، نركز على التخطيط المالي والميزانيات والمحاسبة والتقارير المالية. نحن نضمن الضوابط المالية المناسبة والامتثال للوائح المصرفية.",
			"الإدارة المالية تشمل التخطيط والتنظيم والتوجيه والتحكم في الأنشطة المالية. في البنك المركزي العماني، يتعامل قسم {department} مع التحليل المالي وتقييم المخاطر والامتثال التنظيمي.",
			"المال يشمل جميع الأنشطة المتعلقة بإدارة الأموال، بما في ذلك الميزانيات والاستثمار والإقراض والتقارير المالية. في قسم {department}، نحافظ على الاستقرار المالي وضمان الامتثال التنظيمي.",
		},
	},
	{
		name:      "banking",
		questions: []string{"ما هو المصرف", "النظام المصرفي", "البنك المركزي", "السياسة النقدية", "اللوائح المصرفية"},
		responses: []string{
			"المصرف هو عمل قبول الودائع وإقراض الأموال. البنك المركزي العماني مسؤول عن السياسة النقدية والإشراف المصرفي والحفاظ على الاستقرار المالي. قسم {department} يلعب دوراً حاسماً في هذه العمليات.",
			"البنك المركزي يدير عملة البلاد والمعروض النقدي وأسعار الفائدة. البنك المركزي العماني، الذي تأسس في عام 1974، يشرف على النظام المصرفي في عمان ويضمن الاستقرار المالي. قسم {department} يساهم في هذه الوظائف الحيوية.",
			"المصرفية تشمل الوساطة المالية بين المدخرين والمقترضين. البنك المركزي العماني ينظم القطاع المصرفي وينفذ السياسة النقدية. قسم {department} يدعم هذه الوظائف التنظيمية والتشغيلية.",
		},
	},
	{
		name:      "oman_central_bank",
		questions: []string{"البنك المركزي العماني", "البنك المركزي", "بنك عمان المركزي", "بنك مسقط", "بنك عمان"},
		responses: []string{
			"البنك المركزي العماني هو البنك المركزي لسلطنة عمان، تأسس في عام 1974. يقع مقره الرئيسي في مسقط ويدير السياسة النقدية للبلاد. في قسم {department}، نركز على {focus_area}. كيف يمكنني مساعدتك أكثر؟",
			"البنك المركزي العماني مسؤول عن السياسة النقدية والإشراف المصرفي والاستقرار المالي. يقع في مسقط وتأسس في عام 1974. قسم {department} متخصص في {focus_area}. ما هي المعلومات المحددة التي تحتاجها؟",
			"البنك المركزي العماني يخدم كسلطة نقدية للبلاد، ينظم البنوك ويدير العملة. قسم {department} في البنك المركزي العماني يركز على {focus_area}. كيف يمكنني مساعدتك اليوم؟",
		},
	},
	{
		name:      "general_help",
		questions: []string{"مساعدة", "ماذا يمكنك أن تفعل", "كيف يمكنك المساعدة", "ماذا تفعل", "المساعدة"},
		responses: []string{
			"أنا مساعدك الذكي في قسم {department} في البنك المركزي العماني. يمكنني مساعدتك في الأسئلة حول المصرفية والمالية واللوائح والمسائل الخاصة بالقسم. يمكنني أيضاً البحث في المستندات المرفوعة وتقديم الترجمات.",
			"يمكنني مساعدتك في مهام مختلفة تشمل الإجابة على الأسئلة حول المصرفية والمالية والبحث في مستندات القسم وترجمة النصوص وتقديم معلومات حول عمليات البنك المركزي. ماذا تريد المساعدة فيه؟",
			"بصفتي مساعدك الذكي، يمكنني المساعدة في التحليل المالي والبحث في المستندات وخدمات الترجمة والإجابة على الأسئلة حول اللوائح المصرفية وسياسات البنك المركزي. كيف يمكنني مساعدتك اليوم؟",
		},
	},
}

// PatternTier matches short conversational questions against a fixed
// bilingual knowledge base using sequence similarity.
type PatternTier struct{}

// NewPatternTier creates a PatternTier.
func NewPatternTier() *PatternTier { return &PatternTier{} }

// Name implements Responder.
func (t *PatternTier) Name() string { return SourcePatterns }

// TryAnswer implements Responder.
func (t *PatternTier) TryAnswer(ctx context.Context, question, lang string, departments []string) (*Answer, bool, error) {
	if lang == "" {
		lang = translate.DetectLanguage(question)
	}
	categories := patternsEnglish
	if lang == translate.LangArabic {
		categories = patternsArabic
	}

	query := strings.ToLower(strings.TrimSpace(question))

	var best *patternCategory
	bestScore := 0.0
	for i := range categories {
		for _, candidate := range categories[i].questions {
			score := SequenceRatio(query, strings.ToLower(candidate))
			if score > bestScore {
				bestScore = score
				best = &categories[i]
			}
		}
	}
	if best == nil || bestScore < patternCutoff {
		return nil, false, nil
	}

	text := renderTemplate(pickResponse(best.responses, query), departments, lang)
	logger.Infow("pattern match",
		"category", best.name,
		"score", fmt.Sprintf("%.2f", bestScore),
	)
	answer := &Answer{
		Text:        text,
		Source:      SourcePatterns,
		Language:    lang,
		Departments: departments,
	}
	if lang != translate.LangArabic {
		answer.TextEN = text
	}
	return answer, true, nil
}

// pickResponse varies the reply per query while staying deterministic for
// repeated identical questions.
func pickResponse(responses []string, query string) string {
	h := fnv.New32a()
	h.Write([]byte(query))
	return responses[int(h.Sum32())%len(responses)]
}

// renderTemplate fills {department} and {focus_area} placeholders.
func renderTemplate(template string, departments []string, lang string) string {
	dept := tagger.GeneralDepartment
	if len(departments) > 0 {
		dept = departments[0]
	}
	focus := tagger.Focus(dept)
	if lang == translate.LangArabic {
		focus = tagger.FocusArabic(dept)
	}
	out := strings.ReplaceAll(template, "{department}", dept)
	return strings.ReplaceAll(out, "{focus_area}", focus)
}
