package chat

import (
	"fmt"
	"strings"

	"knowledge-navigator-api/internal/domain/entity"
)

// SinInformacion 本地检索回答中声明“无资料”的哨兵串
// 提示词要求模型在上下文不含答案时原样返回它，策略据此触发网络回退。
const SinInformacion = "No tengo información sobre eso en mi base de datos"

const personaSystem = `Eres una secretaria virtual profesional y amable. ` +
	`Respondes siempre en el idioma del usuario, con claridad y precisión. ` +
	`Si la información para responder no se encuentra en el contexto proporcionado, ` +
	`debes decir con elegancia que no tienes dicha información en tu base de datos. No inventes nada.`

// buildLocalPrompt 拼装本地文档回答的提示词
func buildLocalPrompt(contextBlock, question string, history []Turn, concise bool) string {
	var sb strings.Builder
	sb.WriteString("Basándote únicamente en el siguiente contexto, responde la pregunta del usuario explicando lo encontrado. ")
	if concise {
		sb.WriteString("Responde de forma clara y concisa. ")
	}
	sb.WriteString("Haz una pregunta relacionada con el contexto encontrado para recomendar al usuario.\n")
	fmt.Fprintf(&sb, "Si la información no está en el contexto, responde EXACTAMENTE: %q. No añadas nada más.\n\n", SinInformacion)
	if h := formatHistory(history); h != "" {
		sb.WriteString("Historial de la conversación:\n")
		sb.WriteString(h)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Contexto:\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nPregunta: ")
	sb.WriteString(question)
	sb.WriteString("\nRespuesta:")
	return sb.String()
}

// buildWebPrompt 拼装网络搜索回答的提示词，禁止编造结果之外的内容
func buildWebPrompt(results []WebResult, question string, history []Turn) string {
	var sb strings.Builder
	sb.WriteString("Eres un asistente de investigación profesional. ")
	sb.WriteString("Basándote ÚNICAMENTE en los siguientes resultados de búsqueda, responde a la pregunta del usuario de forma clara y concisa. ")
	sb.WriteString("No añadas información que no esté en los resultados. ")
	sb.WriteString("Si los resultados no son suficientes para responder, indícalo amablemente. ")
	sb.WriteString("Añade una pregunta a modo de sugerencia relacionada con la pregunta del usuario y los resultados obtenidos.\n\n")
	if h := formatHistory(history); h != "" {
		sb.WriteString("Historial de la conversación:\n")
		sb.WriteString(h)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Resultados de búsqueda:\n")
	for i, r := range results {
		snippet := compactOneLine(r.Snippet)
		if snippet == "" {
			continue
		}
		fmt.Fprintf(&sb, "[%d] %s: %s\n", i+1, strings.TrimSpace(r.Title), snippet)
	}
	sb.WriteString("\nPregunta nueva: ")
	sb.WriteString(question)
	sb.WriteString("\nRespuesta final:")
	return sb.String()
}

// buildJudgePrompt 拼装充分性判定提示词，要求模型只回答 sí / no
func buildJudgePrompt(contextBlock, question string, maxChars int) string {
	ctx := truncateRunes(contextBlock, maxChars)
	var sb strings.Builder
	sb.WriteString("Evalúa si el siguiente contexto contiene información suficiente para responder la pregunta. ")
	sb.WriteString("Responde únicamente \"sí\" o \"no\", sin explicaciones.\n\n")
	sb.WriteString("Contexto:\n")
	sb.WriteString(ctx)
	sb.WriteString("\n\nPregunta: ")
	sb.WriteString(question)
	sb.WriteString("\n¿Es suficiente el contexto? Respuesta:")
	return sb.String()
}

// buildContextBlock 将召回分块格式化为可注入提示词的上下文块
// 约束：不携带 score 等调试信息。
func buildContextBlock(chunks []*entity.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	lines := make([]string, 0, len(chunks))
	for i, c := range chunks {
		if c == nil {
			continue
		}
		txt := compactOneLine(c.Content)
		if txt == "" {
			continue
		}
		ref := c.SourceID
		if c.Page > 0 {
			ref = fmt.Sprintf("%s p.%d", c.SourceID, c.Page)
		}
		if s := strings.TrimSpace(c.Section); s != "" {
			ref = ref + " · " + s
		}
		lines = append(lines, fmt.Sprintf("[%d] (%s) %s", i+1, ref, txt))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func formatHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns)*2)
	for _, t := range turns {
		lines = append(lines, "Usuario: "+compactOneLine(t.Question))
		lines = append(lines, "Asistente: "+compactOneLine(t.Answer))
	}
	return strings.Join(lines, "\n")
}

func compactOneLine(s string) string {
	out := strings.ReplaceAll(s, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.ReplaceAll(out, "\n", " ")
	out = strings.TrimSpace(out)
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
