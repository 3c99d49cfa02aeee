package chat

import "strings"

const followUpMinRunes = 5

// affirmatives 用户确认建议问题时可用的肯定回复
var affirmatives = []string{"si", "sí", "yes", "ok", "vale", "dale", "procede", "claro"}

// isAffirmative 判断输入是否为对建议问题的肯定回复
func isAffirmative(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.Trim(s, "¡!.,")
	for _, a := range affirmatives {
		if s == a {
			return true
		}
	}
	return false
}

// extractFollowUp 从答案文本中提取末尾的建议问题
// 取最后一个 '?' 之前、上一句边界之后的子句；长度不足时返回空。
func extractFollowUp(answer string) string {
	text := strings.TrimSpace(answer)
	last := strings.LastIndex(text, "?")
	if last < 0 {
		return ""
	}
	clause := text[:last]
	start := 0
	for _, sep := range []string{"?", ".", "!", "\n", "¿"} {
		if i := strings.LastIndex(clause, sep); i >= 0 {
			end := i + len(sep)
			if sep == "¿" {
				// 保留开头的反问号
				end = i
			}
			if end > start {
				start = end
			}
		}
	}
	candidate := strings.TrimSpace(text[start : last+1])
	if len([]rune(strings.Trim(candidate, "¿?"))) <= followUpMinRunes {
		return ""
	}
	return candidate
}
