package oracle

import (
	"fmt"
	"strings"

	"interview-service/internal/domain"
)

const questionSystemPrompt = `You are a senior software engineer conducting a technical interview.
Return ONLY valid JSON. No markdown, no fences.`

const evalSystemPrompt = `You are a strict but fair technical interviewer.
Return only valid JSON. No markdown.`

const reportSystemPrompt = `You are a technical interviewer writing the final assessment of a candidate.
Return only valid JSON. No markdown.`

// questionMix is the target composition of a five-question interview.
const questionMix = "Across the whole interview aim for 3 conceptual questions and 2 coding questions."

func buildQuestionPrompt(profile domain.Profile, exchanges []domain.Exchange) string {
	var sb strings.Builder
	sb.WriteString("You are interviewing this candidate:\n")
	writeProfile(&sb, profile)

	if len(exchanges) == 0 {
		sb.WriteString("\nAsk the opening question of the interview. ")
	} else {
		sb.WriteString("\nQuestions asked so far:\n")
		for i, ex := range exchanges {
			fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, ex.Question.Kind, ex.Question.Text)
			if ex.Answer != nil {
				fmt.Fprintf(&sb, "   Candidate answered (correctness %d, depth %d, clarity %d): %s\n",
					ex.Answer.Scores.Correctness, ex.Answer.Scores.Depth, ex.Answer.Scores.Clarity,
					truncate(ex.Answer.Text, 400))
			}
		}
		fmt.Fprintf(&sb, "\nAsk question number %d. Do not repeat earlier questions. ", len(exchanges)+1)
	}
	sb.WriteString(questionMix)
	sb.WriteString("\nInclude a hint for coding questions.\n\n")
	sb.WriteString("Return JSON in this exact format:\n")
	sb.WriteString(`{"type": "conceptual" or "coding", "question": "...", "hint": "..."}`)
	sb.WriteString("\n")
	return sb.String()
}

func buildEvalPrompt(question domain.Question, answerText string) string {
	var sb strings.Builder
	sb.WriteString("Evaluate this technical interview answer:\n\n")
	fmt.Fprintf(&sb, "Question: %s\nType: %s\nAnswer: %s\n\n", question.Text, question.Kind, answerText)
	sb.WriteString("Provide scores (0-100) for:\n")
	sb.WriteString("1. Correctness: How accurate is the answer?\n")
	sb.WriteString("2. Depth: How thorough and detailed?\n")
	sb.WriteString("3. Clarity: How well-explained?\n\n")
	sb.WriteString("Also provide constructive feedback.\n\n")
	sb.WriteString("Return JSON format:\n")
	sb.WriteString(`{"correctness": 85, "depth": 75, "clarity": 90, "feedback": "..."}`)
	sb.WriteString("\n")
	return sb.String()
}

func buildReportPrompt(sc domain.SessionContext) string {
	var sb strings.Builder
	sb.WriteString("The interview below is finished. Write the final assessment.\n\nCandidate:\n")
	writeProfile(&sb, sc.Profile)
	sb.WriteString("\nInterview transcript with per-answer scores:\n")
	for i, ex := range sc.Exchanges {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, ex.Question.Kind, ex.Question.Text)
		if ex.Answer != nil {
			fmt.Fprintf(&sb, "   Answer (correctness %d, depth %d, clarity %d): %s\n",
				ex.Answer.Scores.Correctness, ex.Answer.Scores.Depth, ex.Answer.Scores.Clarity,
				truncate(ex.Answer.Text, 400))
		}
	}
	sb.WriteString("\nReturn JSON with an overall 0-100 score plus short strength and weak-area bullet points:\n")
	sb.WriteString(`{"average_score": 78, "strengths": ["..."], "weak_areas": ["..."]}`)
	sb.WriteString("\n")
	return sb.String()
}

func writeProfile(sb *strings.Builder, profile domain.Profile) {
	fmt.Fprintf(sb, "- Name: %s\n", orNA(profile.Name))
	fmt.Fprintf(sb, "- Skills: %s\n", orNA(strings.Join(profile.Skills, ", ")))
	fmt.Fprintf(sb, "- Experience: %s\n", orNA(profile.Experience))
	for _, p := range profile.Projects {
		fmt.Fprintf(sb, "- Project: %s (%s) - %s\n", p.Name, p.Tech, p.Description)
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
