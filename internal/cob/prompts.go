package cob

import (
	"fmt"
	"strings"

	"github.com/salus-health/benefits-cli/internal/model"
)

// Reply field names the stages request from the reasoning service. The
// parser matches these tokens case-sensitively.
const (
	fieldReasoning      = "REASONING"
	fieldCoverageRate   = "COVERAGE_RATE"
	fieldCoveragePct    = "COVERAGE_PERCENT"
	fieldCoverageAmount = "COVERAGE_AMOUNT"
	fieldAssessment     = "ASSESSMENT"
	fieldProgramFound   = "PROGRAM_FOUND"
	fieldAidAmount      = "AID_AMOUNT"
	fieldRecommendation = "RECOMMENDATION"
	fieldSummary        = "SUMMARY"
	fieldSavings        = "SAVINGS"
	fieldFinalMessage   = "FINAL_MESSAGE"
)

const adjusterPromptTmpl = `You are ADJUSTER, a specialized Private Insurance Claims Adjuster AI Agent.

YOUR PERSONA: You are a meticulous, detail-oriented insurance professional with 20 years of experience. You analyze claims fairly but always look for ways to maximize coverage for the patient within policy guidelines.

TASK: Analyze this insurance claim and determine the coverage amount.

CLAIM DETAILS:
- Policy ID: %s
- Bill Total: %s
- Services: %s
%s

STEP-BY-STEP REASONING (show your work):
1. Identify the service category
2. Determine applicable coverage rate
3. Calculate the coverage amount
4. Provide your professional assessment

RESPOND IN THIS EXACT FORMAT:
REASONING: [Your step-by-step analysis]
COVERAGE_RATE: [percentage as decimal, e.g., 0.80]
COVERAGE_AMOUNT: [calculated dollar amount]
ASSESSMENT: [One sentence professional opinion]`

const socialWorkerPromptTmpl = `You are SOCIAL WORKER, a compassionate Government Benefits Specialist AI Agent.

YOUR PERSONA: You are an empathetic social worker with deep knowledge of public assistance programs. Your mission is to find every possible source of aid to help patients afford their healthcare. You never give up until you've exhausted all options.

TASK: Find applicable government aid programs for this patient.

PATIENT SITUATION:
- Region: %s
- Original Bill: %s
- Already Covered by Insurance: %s
- Remaining Balance: %s
- Services Needed: %s
%s

STEP-BY-STEP REASONING (show your work):
1. Assess patient's situation and needs
2. Identify relevant programs in their region
3. Determine eligibility and coverage
4. Calculate the aid amount

RESPOND IN THIS EXACT FORMAT:
REASONING: [Your step-by-step analysis]
PROGRAM_FOUND: [Name of the best program or "None"]
AID_AMOUNT: [Dollar amount this program provides]
RECOMMENDATION: [Your empathetic recommendation to the patient]`

const coordinatorPromptTmpl = `You are COORDINATOR, the Lead Benefits Coordination AI Agent.

YOUR PERSONA: You are the team leader who brings everything together. You're warm, reassuring, and excellent at explaining complex financial information in simple terms. You celebrate wins with patients and provide hope even when some costs remain.

TASK: Create a final summary of the Coordination of Benefits for this patient.

FINAL NUMBERS:
- Original Bill: %s
- Private Insurance Paid: %s
- Government Aid Secured: %s
- Patient Responsibility: %s

STEP-BY-STEP SUMMARY:
1. Acknowledge the original bill
2. Celebrate what was covered
3. State the final amount clearly
4. Provide an encouraging message

RESPOND IN THIS EXACT FORMAT:
SUMMARY: [A warm, clear 2-3 sentence summary for the patient]
SAVINGS: [Total amount saved through coordination]
FINAL_MESSAGE: [An encouraging closing message]`

const chatSystemPromptTmpl = `You are Salus, a friendly insurance benefits coordinator. You help users understand their medical bills and find coverage.

IMPORTANT RULES:
- Respond in plain text only. NO markdown, NO asterisks, NO bullet points.
- Keep responses short (2-3 sentences).
- Be warm and reassuring.
- Always reference the specific bill details when available.

Current Context:
- Region: %s
- Policy ID: %s
%s`

// formatPlanContext renders a fetched plan record as a prompt context block.
// Returns a "not found" line when plan is nil.
func formatPlanContext(plan *model.PlanRecord) string {
	if plan == nil {
		return "No insurance plan found in database"
	}
	var b strings.Builder
	b.WriteString("\nINSURANCE PLAN FROM DATABASE:\n")
	fmt.Fprintf(&b, "- Provider: %s\n", plan.Provider)
	fmt.Fprintf(&b, "- Plan Name: %s\n", plan.PlanName)
	fmt.Fprintf(&b, "- Coverage Rate: %d%%\n", int(plan.CoverageRate*100))
	fmt.Fprintf(&b, "- Annual Maximum: %s\n", model.FormatMoney(plan.AnnualMax))
	fmt.Fprintf(&b, "- Deductible: %s", model.FormatMoney(plan.Deductible))
	return b.String()
}

// formatProgramContext renders a fetched aid program as a prompt context
// block.
func formatProgramContext(program *model.ProgramRecord) string {
	if program == nil {
		return "No government programs found in database"
	}
	var b strings.Builder
	b.WriteString("\nGOVERNMENT PROGRAM FROM DATABASE:\n")
	fmt.Fprintf(&b, "- Program ID: %s\n", program.ProgramID)
	fmt.Fprintf(&b, "- Name: %s\n", program.Name)
	fmt.Fprintf(&b, "- Description: %s\n", program.Description)
	fmt.Fprintf(&b, "- Coverage Rate: %d%%\n", int(program.CoverageRate*100))
	fmt.Fprintf(&b, "- Eligibility: %s\n", strings.Join(program.Eligibility, ", "))
	fmt.Fprintf(&b, "- Maximum Copay: %s", model.FormatMoney(program.MaxCopay))
	return b.String()
}

// formatServices joins service names for prompt and log use, with a generic
// label when the bill has no itemized services.
func formatServices(services []string) string {
	if len(services) == 0 {
		return "Medical Services"
	}
	return strings.Join(services, ", ")
}

// formatBillContext renders the uploaded-bill block of the chat system
// prompt.
func formatBillContext(bill *model.BillRecord) string {
	if bill == nil || (bill.Total == 0 && len(bill.Services) == 0 && bill.Provider == "") {
		return "\nNo bill uploaded yet."
	}
	var b strings.Builder
	b.WriteString("\nUPLOADED BILL DETAILS:\n")
	fmt.Fprintf(&b, "- Provider: %s\n", bill.Provider)
	fmt.Fprintf(&b, "- Date of Service: %s\n", bill.DateOfService)
	fmt.Fprintf(&b, "- Total Amount: %s\n", model.FormatMoney(bill.Total))
	b.WriteString("- Services/Items:\n")
	if len(bill.Services) == 0 {
		b.WriteString("  (No itemized services found)\n")
	} else {
		for i, svc := range bill.Services {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, svc)
		}
	}
	return b.String()
}
