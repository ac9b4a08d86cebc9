package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mfinkle/llm-agents/pkg/llms"
	"github.com/mfinkle/llm-agents/pkg/llmutils"
	"github.com/mfinkle/llm-agents/tools"
)

var logger = xlog.NewPackageLogger("github.com/mfinkle/llm-agents", "providers")

type programStep struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type program struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Topics      []string      `json:"topics"`
	Steps       []programStep `json:"steps"`
}

type enrollment struct {
	ID             string   `json:"id"`
	ProgramID      string   `json:"program_id"`
	CurrentStep    string   `json:"current_step"`
	CompletedSteps []string `json:"completed_steps"`
}

// ProgramProvider offers tools over a library of learning programs.
// Topic extraction delegates to a secondary model when one is
// configured, otherwise it falls back to keyword matching.
type ProgramProvider struct {
	mu          sync.Mutex
	library     []*program
	enrollments []*enrollment
	model       llms.Model
}

var _ tools.Provider = (*ProgramProvider)(nil)

// NewProgramProvider returns a program provider with a seeded library.
// The model is optional and only used by topic extraction.
func NewProgramProvider(model llms.Model) *ProgramProvider {
	steps := func(names ...string) []programStep {
		out := make([]programStep, 0, len(names)/2)
		for i := 0; i+1 < len(names); i += 2 {
			out = append(out, programStep{
				ID:          strconv.Itoa(i/2 + 1),
				Name:        names[i],
				Description: names[i+1],
			})
		}
		return out
	}

	return &ProgramProvider{
		model: model,
		library: []*program{
			{ID: "1", Name: "Python Basics", Description: "Learn the fundamentals of Python",
				Topics: []string{"python", "programming", "beginner"},
				Steps: steps(
					"Introduction to Python", "Learn about Python and its uses",
					"Variables and Data Types", "Understand variables and data types in Python",
					"Control Structures", "Learn about loops and conditional statements",
					"Functions and Modules", "Understand functions and modules in Python",
				)},
			{ID: "2", Name: "Web Development with Flask", Description: "Build web applications with Flask",
				Topics: []string{"python", "web", "flask"},
				Steps: steps(
					"Setting Up Flask", "Install and configure Flask for web development",
					"Creating Routes", "Define routes for handling web requests",
					"Templates and Forms", "Use templates and forms for user interaction",
					"Database Integration", "Integrate databases with Flask applications",
				)},
			{ID: "3", Name: "Data Science with Pandas", Description: "Analyze data using Pandas",
				Topics: []string{"python", "data science", "pandas"},
				Steps: steps(
					"Introduction to Pandas", "Learn about Pandas and its uses",
					"Data Wrangling", "Clean and transform data using Pandas",
					"Data Analysis", "Perform data analysis with Pandas",
					"Data Visualization", "Visualize data using Pandas and Matplotlib",
				)},
			{ID: "4", Name: "Machine Learning Fundamentals", Description: "Introduction to machine learning concepts",
				Topics: []string{"machine learning", "data science", "ai"},
				Steps: steps(
					"Introduction to ML", "Learn about machine learning and its applications",
					"Supervised Learning", "Understand supervised learning algorithms",
					"Unsupervised Learning", "Explore unsupervised learning techniques",
					"Model Evaluation", "Evaluate machine learning models",
				)},
			{ID: "5", Name: "JavaScript for Beginners", Description: "Learn JavaScript basics",
				Topics: []string{"javascript", "programming", "web"},
				Steps: steps(
					"Introduction to JavaScript", "Learn about JavaScript and its uses",
					"Variables and Data Types", "Understand variables and data types in JavaScript",
					"Functions and Objects", "Explore functions and objects in JavaScript",
					"DOM Manipulation", "Manipulate the Document Object Model with JavaScript",
				)},
			{ID: "6", Name: "React Development", Description: "Build user interfaces with React",
				Topics: []string{"javascript", "react", "web"},
				Steps: steps(
					"Setting Up React", "Install and configure React for web development",
					"Components and Props", "Create components and pass props in React",
					"State and Lifecycle", "Manage state and lifecycle methods in React",
					"Routing and Hooks", "Implement routing and hooks in React applications",
				)},
			{ID: "7", Name: "Cloud Computing with AWS", Description: "Learn AWS services",
				Topics: []string{"cloud", "aws", "devops"},
				Steps: steps(
					"Introduction to AWS", "Learn about AWS and its cloud services",
					"EC2 and S3", "Deploy virtual servers and store data in the cloud",
					"Lambda Functions", "Run code without provisioning or managing servers",
					"DynamoDB", "Build applications with a fully managed NoSQL database",
				)},
		},
		enrollments: []*enrollment{
			{ID: "1", ProgramID: "1", CurrentStep: "2", CompletedSteps: []string{"1"}},
		},
	}
}

// Name implements the Provider interface.
func (p *ProgramProvider) Name() string {
	return "ProgramToolProvider"
}

// GetTools implements the Provider interface.
func (p *ProgramProvider) GetTools() []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "get_relevant_program_topics_from_input",
			Description: `Extracts topics from the input text. Parameter should be a string containing the user's input text. Example: { "type": "call_tool", "tool": "get_relevant_program_topics_from_input", "param": "I want to learn Python programming" }`,
			Response:    `Returns a list of topics extracted from the text. Example: ["python", "programming"]`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "User input text as a string",
			},
			Func: func(ctx context.Context, param any) (any, error) {
				return p.getRelevantTopics(ctx, tools.StringParam(param))
			},
		},
		{
			Name:        "get_program_topics",
			Description: `Gets the list of available program topics. No parameter is needed. Example: { "type": "call_tool", "tool": "get_program_topics" }`,
			Response:    `Returns a list of program topics. Example: ["python", "web", "data science"]`,
			Param: &tools.ParamInfo{
				Required:    false,
				Description: "No parameter needed",
			},
			Func: func(_ context.Context, _ any) (any, error) {
				return p.getTopics(), nil
			},
		},
		{
			Name:        "get_programs_for_topics",
			Description: `Gets the programs related to the given topics. Parameter should be an array of topic strings. Example: { "type": "call_tool", "tool": "get_programs_for_topics", "param": ["python", "web"] }`,
			Response:    `Returns a list of programs. Example: [{"id": "1", "name": "Python Basics", "description": "Learn the fundamentals of Python", "topics": ["python", "programming", "beginner"]}]`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamArray,
				Description: `List of topic strings (e.g., ["python", "web"])`,
				ItemType:    tools.ParamString,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.getProgramsForTopics(tools.StringsParam(param)), nil
			},
		},
		{
			Name:        "enroll_in_program",
			Description: `Enrolls the user in the program with the given ID. Parameter should be a string containing the program ID. Example: { "type": "call_tool", "tool": "enroll_in_program", "param": "1" }`,
			Response:    `Returns the status of the enrollment. Example: {"status": "success", "message": "Enrolled in program successfully."}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Program ID as a string (e.g., "1")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.enroll(tools.StringParam(param)), nil
			},
		},
	}
}

func (p *ProgramProvider) getTopics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topicsLocked()
}

func (p *ProgramProvider) topicsLocked() []string {
	seen := map[string]bool{}
	var topics []string
	for _, prog := range p.library {
		for _, t := range prog.Topics {
			if !seen[t] {
				seen[t] = true
				topics = append(topics, t)
			}
		}
	}
	return topics
}

// getRelevantTopics asks a secondary model to pick the known topics
// mentioned in the input. Without a model it matches topics by
// substring.
func (p *ProgramProvider) getRelevantTopics(ctx context.Context, input string) ([]string, error) {
	available := p.getTopics()

	if p.model == nil {
		lower := strings.ToLower(input)
		matched := []string{}
		for _, t := range available {
			if strings.Contains(lower, t) {
				matched = append(matched, t)
			}
		}
		return matched, nil
	}

	prompt := fmt.Sprintf(`You are a helpful assistant that can extract relevant topics from text supplied by a user.
User inputs will be passed as plain text.
All responses MUST use JSON format. You can reply with a list of applicable topics, for example ["topic 1", "topic 2", "..."].
Here are the set of topics available:
%s
Input text: %q`, llmutils.ToJSON(available), input)

	resp, err := p.model.GenerateContent(ctx,
		[]llms.Message{llms.NewMessage(llms.RoleUser, prompt)},
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to extract topics")
	}

	raw := llmutils.CleanJSON(llmutils.BytesTrimBackticks([]byte(resp.Content)))
	var topics []string
	if err := json.Unmarshal(raw, &topics); err != nil {
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "failed_to_parse_topics",
			"err", err.Error(),
		)
		return []string{}, nil
	}
	return topics, nil
}

func (p *ProgramProvider) getProgramsForTopics(topics []string) []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	matching := []map[string]any{}
	for _, prog := range p.library {
		if matchesAny(prog.Topics, topics) {
			matching = append(matching, map[string]any{
				"id":          prog.ID,
				"name":        prog.Name,
				"description": prog.Description,
				"topics":      prog.Topics,
			})
		}
	}
	return matching
}

func matchesAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (p *ProgramProvider) enroll(programID string) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, prog := range p.library {
		if prog.ID == programID {
			p.enrollments = append(p.enrollments, &enrollment{
				ID:          strconv.Itoa(len(p.enrollments) + 1),
				ProgramID:   programID,
				CurrentStep: "1",
			})
			return map[string]any{"status": "success", "message": "Enrolled in program successfully."}
		}
	}
	return map[string]any{"status": "fail", "message": "Program not found."}
}
