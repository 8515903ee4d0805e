package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// templateFile is the yaml format survey templates are imported from.
// Departments are referenced by name.
type templateFile struct {
	Title              string             `yaml:"title"`
	Description        string             `yaml:"description"`
	RatedDepartment    string             `yaml:"rated_department"`
	ManagingDepartment string             `yaml:"managing_department"`
	Questions          []templateQuestion `yaml:"questions"`
}

type templateQuestion struct {
	Text     string             `yaml:"text"`
	Type     model.QuestionType `yaml:"type"`
	Category string             `yaml:"category"`
	Options  []templateOption   `yaml:"options"`
}

type templateOption struct {
	Text  string `yaml:"text"`
	Value string `yaml:"value"`
}

func parseTemplates(data []byte) ([]templateFile, error) {
	var templates []templateFile
	if err := yaml.Unmarshal(data, &templates); err != nil {
		var single templateFile
		if singleErr := yaml.Unmarshal(data, &single); singleErr != nil {
			return nil, errors.Wrap(err, "could not parse templates")
		}
		templates = []templateFile{single}
	}
	return templates, nil
}

// buildSurvey resolves the department names of a template
func buildSurvey(t templateFile, departments model.DepartmentStore) (*model.Survey, error) {
	rated, err := departments.GetByName(t.RatedDepartment)
	if err != nil {
		return nil, errors.Wrapf(err, "template %q", t.Title)
	}
	survey := &model.Survey{
		Title:             t.Title,
		Description:       t.Description,
		RatedDepartmentID: rated.ID,
	}
	if t.ManagingDepartment != "" {
		managing, err := departments.GetByName(t.ManagingDepartment)
		if err != nil {
			return nil, errors.Wrapf(err, "template %q", t.Title)
		}
		survey.ManagingDepartmentID = managing.ID
	}
	for i, q := range t.Questions {
		question := model.Question{
			Text:     q.Text,
			Type:     q.Type,
			Category: q.Category,
			Order:    i + 1,
		}
		for _, o := range q.Options {
			question.Options = append(
				question.Options, model.QuestionOption{
					Text:  o.Text,
					Value: o.Value,
				},
			)
		}
		survey.Questions = append(survey.Questions, question)
	}
	return survey, nil
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage survey templates",
}

var templatesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import survey templates from a yaml file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.WithStack(err)
		}
		templates, err := parseTemplates(data)
		if err != nil {
			return err
		}
		for _, t := range templates {
			survey, err := buildSurvey(t, backends.Departments)
			if err != nil {
				return err
			}
			if err = backends.Surveys.Create(survey); err != nil {
				return errors.Wrapf(err, "template %q", t.Title)
			}
			fmt.Fprintf(
				cmd.OutOrStdout(), "imported %q with id %d (%d questions)\n", survey.Title, survey.ID,
				len(survey.Questions),
			)
		}
		return nil
	},
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List survey templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		surveys, err := backends.Surveys.List()
		if err != nil {
			return err
		}
		departments, err := backends.Departments.List()
		if err != nil {
			return err
		}
		names := model.DepartmentNames(departments)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tRATED DEPARTMENT")
		for _, s := range surveys {
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Title, names[s.RatedDepartmentID])
		}
		return w.Flush()
	},
}

func init() {
	templatesCmd.AddCommand(templatesImportCmd, templatesListCmd)
}
