package chat

import "strings"

const simpleMaxRunes = 40

// documentKeywords 出现任一关键词则认为提问指向文档库，不走直答捷径
var documentKeywords = []string{
	"documento", "document", "pdf", "página", "pagina", "page",
	"informe", "report", "según", "segun", "according",
	"archivo", "fichero", "base de datos",
}

var greetings = []string{
	"hola", "buenas", "buenos días", "buenos dias", "buenas tardes",
	"buenas noches", "hello", "hi", "hey", "gracias", "adiós", "adios",
}

// isSimpleQuestion 判断是否为可直答的简单输入：简短的问候或客套话，
// 且不含任何文档相关关键词。判定从严：漏判（让简单输入走完整检索）
// 只损失延迟，误判会跳过本应检索的提问。
func isSimpleQuestion(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	q = strings.Trim(q, "¡!¿?.,")
	if q == "" {
		return false
	}
	if len([]rune(q)) > simpleMaxRunes {
		return false
	}
	for _, kw := range documentKeywords {
		if strings.Contains(q, kw) {
			return false
		}
	}
	for _, g := range greetings {
		if q == g || strings.HasPrefix(q, g+" ") || strings.HasPrefix(q, g+",") || strings.HasPrefix(q, g+"!") {
			return true
		}
	}
	return false
}
