package prompt

// Builtin prompt library for PPM extraction. Each of the six sections gets
// its own user instruction; the shared system prompt carries the deal
// identity and the document's opening pages. Overridable via LoadFromDirectory.

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	SystemExtraction string

	ExtractionLeadership       string
	ExtractionCompensation     string
	ExtractionTrackRecord      string
	ExtractionProjectedResults string
	ExtractionUseOfProceeds    string
	ExtractionFinalDataTable   string
}{
	SystemExtraction: "system.extraction",

	ExtractionLeadership:       "extraction.leadership",
	ExtractionCompensation:     "extraction.compensation",
	ExtractionTrackRecord:      "extraction.track_record",
	ExtractionProjectedResults: "extraction.projected_results",
	ExtractionUseOfProceeds:    "extraction.use_of_proceeds",
	ExtractionFinalDataTable:   "extraction.final_data_table",
}

func registerBuiltins(r *Registry) {
	for _, pt := range builtinPrompts {
		p := pt
		_ = r.Register(&p)
	}
}

const extractionSystemPrompt = `# AI Assistant for Private Placement Memorandum (PPM) Information Extraction

## Task Overview:
You are an AI assistant specialized in analyzing and extracting data from Private Placement Memorandum (PPM) documents. Your task is to generate structured JSON output for six key sections: **Leadership**, **Compensation**, **Track Record**, **Projected Results**, **Use of Proceeds**, and the **Final Data Table**.

### Core Principles:
1. **Accuracy**: Extract data precisely as it appears in the source document.
2. **Completeness**: Ensure all required fields are populated for each section.
3. **Consistency**: Maintain uniform formatting and structure across all entries.
4. **Adaptability**: Handle variations in data presentation while preserving the core information.

### Operational Framework:
1. Carefully read and analyze the retrieved passages of the PPM document.
2. Extract all relevant data points for the requested section based on its field descriptions.
3. If a required field is not explicitly stated, infer the value from context where possible; if it cannot be determined, assign "N/A".
4. Organize the extracted data into JSON format using the exact field names and structure shown in the examples.

### Important Notes:
- Ensure all numeric Deal_IDs are enclosed in quotes (e.g., "4444").
- Include percentage symbols (%) for all percentage values and dollar signs ($) for amounts.
- If a value is not available or not applicable, use "N/A".
- Respond with JSON only, no commentary.

### Context:
The following text comprises the first few pages of the PPM document, which serves as the primary source for deal identity:
` + "```" + `
{{.FirstPages}}
` + "```" + `
### Instruction:
- Use the following as Deal_ID: {{.DealID}}, or the one found in the above context.
- Retain all relevant information from the context to ensure accurate data extraction.
- Retain information for Disposition Fee, if found in the above context.`

var builtinPrompts = []PromptTemplate{
	{
		ID:           PromptIDs.SystemExtraction,
		Name:         "PPM Extraction System Prompt",
		Category:     "system",
		Description:  "Shared system instruction carrying deal identity and opening pages",
		SystemPrompt: extractionSystemPrompt,
		Version:      "1.0",
	},
	{
		ID:          PromptIDs.ExtractionLeadership,
		Name:        "Leadership Section",
		Category:    "extraction",
		Description: "Extract leadership individuals, titles, experience and rank",
		UserPromptTmpl: `# Leadership Section Prompt

**Goal**: Extract leadership details from the PPM.

**Instructions**:
- Identify the individuals in leadership roles along with their titles, experience, and ranking within the sponsor organization.
- The Description is created from the experiences of the person.
- For years of experience, ensure it is explicitly mentioned; otherwise, mark it as "N/A".

**Fields**: Deal_ID, Name, Title, Description, Years_in_Industry, Sponsor_Name_Rank

**Structured Output**:
` + "```json" + `
{
  "Leadership": [
    {
      "Deal_ID": "4444",
      "Name": "Edward E. Fernandez",
      "Title": "Chief Executive Officer",
      "Description": "Prior to founding 1031 Crowdfunding, Mr. Fernandez has 20 years of experience in real estate.",
      "Years_in_Industry": "20",
      "Sponsor_Name_Rank": "1"
    }
  ]
}
` + "```" + `
If any information is missing or not explicitly provided, mark it as "N/A".`,
		Version: "1.0",
	},
	{
		ID:          PromptIDs.ExtractionCompensation,
		Name:        "Compensation Section",
		Category:    "extraction",
		Description: "Extract sponsor compensation details",
		UserPromptTmpl: `# Compensation Section Prompt

**Goal**: Extract sponsor compensation details from the PPM.

**Instructions**:
- Extract only the compensation details related to the sponsor: the type of payment, how it is determined, and the estimated amounts.
- Do not infer missing values.

**Fields**: Deal_ID, Type_of_Payment, Determination_of_Amount, Estimated_Amount, Sponsor_Compensation_Rank

**Structured Output**:
` + "```json" + `
{
  "Compensation": [
    {
      "Deal_ID": "4444",
      "Type_of_Payment": "Reimbursement of the Sponsor for Organization Expenses",
      "Determination_of_Amount": "The Sponsor is entitled to reimbursement for Organization Expenses...",
      "Estimated_Amount": "$275,000",
      "Sponsor_Compensation_Rank": "1"
    }
  ]
}
` + "```" + `
If any information is not provided, use "N/A" in place of the missing value.`,
		Version: "1.0",
	},
	{
		ID:          PromptIDs.ExtractionTrackRecord,
		Name:        "Track Record Section",
		Category:    "extraction",
		Description: "Extract the sponsor's prior-program track record",
		UserPromptTmpl: `# Track Record Section Prompt

**Goal**: Extract the sponsor's track record and return details from the PPM.

**Instructions**:
- Extract program name, projected and average returns, and property type for each prior program.
- Ensure that all return values follow the percentage format (e.g., "5.00%").

**Fields**: Program_Name, PPM_Projected_Cash_on_Cash_Return_2023, Avg_Cash_on_Cash_Return_from_Inception_through_12/31/2023, Property_Type, Deal_ID, Sponsor_Record_Rank

**Structured Output**:
` + "```json" + `
{
  "Track Record": [
    {
      "Program_Name": "National Multifamily Portfolio I DST",
      "PPM_Projected_Cash_on_Cash_Return_2023": "5.00%",
      "Avg_Cash_on_Cash_Return_from_Inception_through_12/31/2023": "6.25%",
      "Property_Type": "Multifamily",
      "Deal_ID": "1010",
      "Sponsor_Record_Rank": "1"
    }
  ]
}
` + "```" + `
If any data is not available, use "N/A" for missing values.
{{if .LastPages}}
The following text comprises the last pages of the PPM document, which may contain track record tables:
` + "```" + `
{{.LastPages}}
` + "```" + `{{end}}`,
		Version: "1.0",
	},
	{
		ID:          PromptIDs.ExtractionProjectedResults,
		Name:        "Projected Results Section",
		Category:    "extraction",
		Description: "Extract year-by-year financial projections",
		UserPromptTmpl: `# Projected Results Section Prompt

**Goal**: Extract financial projections for the deal from the PPM.

**Instructions**:
- Extract yearly projected financial metrics from Year 1 to Year 11.
- Each Year_N object carries Cash_on_Cash, Ending_Balance, Gross_Revenue, Total_Expenses and NOI.
- All numeric values should have dollar signs ($) or percentage symbols (%) where applicable.

**Structured Output**:
` + "```json" + `
{
  "Projected Results": [
    {
      "Deal_ID": "4444",
      "Year_1": {
        "Cash_on_Cash": "5.24%",
        "Ending_Balance": "$353,501",
        "Gross_Revenue": "$8,665,000",
        "Total_Expenses": "$5,999,750",
        "NOI": "$2,665,250"
      }
    }
  ]
}
` + "```" + `
If data for any year is not available, use "N/A" for missing values.
{{if .LastPages}}
The following text comprises the last pages of the PPM document, which may contain key projected results data:
` + "```" + `
{{.LastPages}}
` + "```" + `{{end}}`,
		Version: "1.0",
	},
	{
		ID:          PromptIDs.ExtractionUseOfProceeds,
		Name:        "Use of Proceeds Section",
		Category:    "extraction",
		Description: "Extract loan, equity, fee and reserve breakdown",
		UserPromptTmpl: `# Use of Proceeds Section Prompt

**Goal**: Extract detailed use of proceeds from the PPM.

**Instructions**:
- Extract loan, equity, commissions, purchase price, reserves, and other fee information.
- Ensure percentages include the (%) symbol and amounts include the dollar sign ($).

**Fields**: Deal_ID, Loan_Proceeds, Loan_Proceeds_%, Equity_Proceeds, Equity_Proceeds_%, Selling_Commissions, Selling_Commissions_%, Property_Purchase_Price, Property_Purchase_Price_%, Trust_Held_Reserve, Trust_Held_Reserve_%, Acquisition_Fees, Acquisition_Fees_%, Bridge_Costs, Bridge_Costs_%, Total, LTV_%, Syndication_Load_%

**Structured Output**:
` + "```json" + `
{
  "Use of Proceeds": [
    {
      "Deal_ID": "4444",
      "Loan_Proceeds": "$14,960,000",
      "Loan_Proceeds_%": "32.91%",
      "Equity_Proceeds": "$30,500,000",
      "Equity_Proceeds_%": "67.09%",
      "Selling_Commissions": "$2,745,000",
      "Selling_Commissions_%": "6.04%",
      "Property_Purchase_Price": "$37,200,000",
      "Property_Purchase_Price_%": "81.83%",
      "Trust_Held_Reserve": "$600,000",
      "Trust_Held_Reserve_%": "1.32%",
      "Acquisition_Fees": "$423,000",
      "Acquisition_Fees_%": "1.50%",
      "Bridge_Costs": "$2,130,000",
      "Bridge_Costs_%": "4.64%",
      "Total": "$45,460,000",
      "LTV_%": "32.91%",
      "Syndication_Load_%": "18.17%"
    }
  ]
}
` + "```" + `
If any information is missing, mark it as "N/A".`,
		Version: "1.0",
	},
	{
		ID:          PromptIDs.ExtractionFinalDataTable,
		Name:        "Final Data Table Section",
		Category:    "extraction",
		Description: "Extract the combined canonical deal row",
		UserPromptTmpl: `# Final Data Table Section Prompt

**Goal**: Extract the complete final data table, combining deal terms, use of proceeds and financial projections.

**Instructions**:
- Extract all key financial metrics, lender information, and yearly projected data for the deal.
- Make sure to fetch all the required data fields.
- All numeric values should be formatted with dollar signs ($) or percentage symbols (%) as needed.

**Fields**: Deal_ID, Sponsor, Deal_Title, Disposition_Fee, Expected_Hold_Years, Lender_Type, Diversified, 721_Upreit, Distribution_Timing, plus the Use of Proceeds fields and Year_1..Year_11 sub-objects.

**Structured Output**:
` + "```json" + `
{
  "Final Data Table": [
    {
      "Deal_ID": "4444",
      "Sponsor": "1031 CF",
      "Deal_Title": "1031CF Portfolio 4 DST",
      "Disposition_Fee": "4%",
      "Expected_Hold_Years": "7",
      "Lender_Type": "N/A",
      "Diversified": "no",
      "721_Upreit": "no",
      "Distribution_Timing": "Monthly",
      "Loan_Proceeds": "$14,960,000",
      "Loan_Proceeds_%": "32.91%",
      "Equity_Proceeds": "$30,500,000",
      "Equity_Proceeds_%": "67.09%",
      "Year_1": {
        "Cash_on_Cash": "5.24%",
        "Ending_Balance": "$353,501",
        "Gross_Revenue": "$8,665,000",
        "Total_Expenses": "$5,999,750",
        "NOI": "$2,665,250"
      }
    }
  ]
}
` + "```" + `
If any information is missing, use "N/A".`,
		Version: "1.0",
	},
}
