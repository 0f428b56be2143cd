package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"alpha_miner/configs"
	"alpha_miner/internal/auth"
	"alpha_miner/internal/brain"
	"alpha_miner/internal/repo"
	"alpha_miner/internal/submitter"
	"alpha_miner/internal/viewer"
)

const separator = "======================================================================"

type menuState struct {
	session *auth.Session
	client  *brain.Client
	sub     *submitter.Submitter
	reader  *bufio.Reader
}

func runMenu() error {
	fmt.Println(separator)
	fmt.Println("WorldQuant Brain Alpha Submitter - Auto Filter & Submit")
	fmt.Println(separator)

	state := &menuState{reader: bufio.NewReader(os.Stdin)}
	if err := state.login(true); err != nil {
		fmt.Println("Failed to login. Exiting.")
		return err
	}
	fmt.Println("Login successful!")

	for {
		fmt.Println()
		fmt.Println(separator)
		fmt.Println("Main Menu")
		fmt.Println(separator)
		fmt.Println("1. Auto-scan and filter eligible alphas")
		fmt.Println("2. Manual submit (enter alpha ID)")
		fmt.Println("3. Check alpha info")
		fmt.Println("4. Re-login")
		fmt.Println("5. Exit")
		fmt.Println(separator)

		choice := state.readLine("\nSelect option (1-5): ")
		switch choice {
		case "1":
			state.scanAndSubmit()
		case "2":
			state.manualSubmit()
		case "3":
			state.checkAlphaInfo()
		case "4":
			if err := state.login(false); err != nil {
				fmt.Println("Failed to login. Exiting.")
				return err
			}
			fmt.Println("Login successful!")
		case "5":
			fmt.Println("Goodbye!")
			return nil
		default:
			fmt.Println("Invalid option. Please select 1-5.")
		}
	}
}

// login resolves credentials (config file first unless forced interactive)
// and replaces the session, client and submitter wholesale.
func (state *menuState) login(useConfig bool) error {
	conf := configs.GetGlobalConfig()

	var email, password string
	var err error
	if useConfig {
		email, password, err = auth.LoadUserConfig(conf.CredentialConfig.UserConfigFile)
		if err != nil {
			log.Warnf("load user config Failed {%s}", err.Error())
		}
	}
	if email == "" || password == "" {
		fmt.Println("\n=== WorldQuant Brain Login ===")
		email, password, err = auth.PromptCredentials()
		if err != nil {
			return err
		}
	}

	fmt.Printf("Logging in with: %s\n", email)
	session, err := auth.Login(conf.BrainConfig.BaseUrl,
		time.Duration(conf.BrainConfig.TimeoutSecond)*time.Second, email, password)
	if err != nil {
		return err
	}

	state.session = session
	state.client = brain.NewClient(session)
	var recorder submitter.Recorder
	if repo.Enabled() {
		recorder = repo.NewSubmissionRepo()
	}
	state.sub = submitter.NewSubmitter(state.client, submitter.DefaultPolicy(), recorder)
	return nil
}

func (state *menuState) readLine(prompt string) string {
	fmt.Print(prompt)
	line, err := state.reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (state *menuState) scanAndSubmit() {
	conf := configs.GetGlobalConfig().SubmitConfig

	fmt.Println("\nFetching your alphas...")
	alphas, err := state.client.ListAlphas(context.Background(), conf.ListLimit)
	if err != nil {
		log.Errorf("list alphas Failed {%s}", err.Error())
	}
	if len(alphas) == 0 {
		fmt.Println("No alphas found or failed to fetch.")
		return
	}

	checkLimiter := rate.NewLimiter(rate.Every(time.Duration(conf.CheckDelayMs)*time.Millisecond), 1)
	filtered, err := submitter.FilterEligible(context.Background(), state.client, alphas, checkLimiter)
	if err != nil {
		log.Errorf("filter alphas Failed {%s}", err.Error())
		return
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("   Eligible for submission: %d\n", len(filtered.Eligible))
	fmt.Printf("   Already submitted: %d\n", len(filtered.AlreadySubmitted))
	fmt.Printf("   Failed checks: %d\n", len(filtered.Failed))

	if len(filtered.Eligible) == 0 {
		fmt.Println("\nNo eligible alphas found for submission.")
		return
	}

	fmt.Println("\n" + separator)
	fmt.Printf("Found %d eligible alpha(s) for submission:\n", len(filtered.Eligible))
	fmt.Println(separator)
	for i, alpha := range filtered.Eligible {
		alphaType := alpha.Type
		if alphaType == "" {
			alphaType = "N/A"
		}
		fmt.Printf("%d. Alpha ID: %s | Type: %s\n", i+1, alpha.Id, alphaType)
	}
	fmt.Println(separator)

	fmt.Println("\nSubmission Options:")
	fmt.Println("  [A] Submit ALL eligible alphas")
	fmt.Println("  [S] Select specific alphas to submit (e.g., 1,3,5 or 1-10)")
	fmt.Println("  [C] Cancel and return to menu")

	switch strings.ToUpper(state.readLine("\nYour choice: ")) {
	case "A":
		alphaIds := make([]string, 0, len(filtered.Eligible))
		for _, alpha := range filtered.Eligible {
			alphaIds = append(alphaIds, alpha.Id)
		}
		state.confirmAndSubmit(alphaIds)
	case "S":
		selection := state.readLine("\nEnter alpha numbers (e.g., 1,3,5 or 1-10): ")
		indices, err := submitter.ParseSelection(selection, len(filtered.Eligible))
		if err != nil {
			fmt.Printf("Invalid selection: %s\n", err.Error())
			return
		}
		alphaIds := make([]string, 0, len(indices))
		for _, idx := range indices {
			alphaIds = append(alphaIds, filtered.Eligible[idx-1].Id)
		}
		if len(alphaIds) == 0 {
			fmt.Println("No valid alphas selected.")
			return
		}
		fmt.Printf("\nSelected %d alpha(s): %s\n", len(alphaIds), strings.Join(alphaIds, ", "))
		state.confirmAndSubmit(alphaIds)
	default:
		// cancel
	}
}

func (state *menuState) confirmAndSubmit(alphaIds []string) {
	confirm := state.readLine(fmt.Sprintf("\nConfirm: Submit %d alphas? (yes/no): ", len(alphaIds)))
	if strings.ToLower(confirm) != "yes" {
		fmt.Println("Cancelled.")
		return
	}

	result := state.sub.BatchSubmit(alphaIds)
	fmt.Println("\n" + separator)
	fmt.Println("Batch Submission Complete!")
	fmt.Println(separator)
	fmt.Printf("Successfully submitted: %d\n", len(result.Success))
	fmt.Printf("Failed: %d\n", len(result.Failed))
	if len(result.Success) > 0 {
		fmt.Printf("\nSuccessful IDs: %s\n", strings.Join(result.Success, ", "))
	}
	if len(result.Failed) > 0 {
		fmt.Printf("\nFailed IDs: %s\n", strings.Join(result.Failed, ", "))
	}
	fmt.Println(separator)
}

func (state *menuState) manualSubmit() {
	alphaId := state.readLine("\nEnter alpha ID: ")
	if alphaId == "" {
		fmt.Println("Please enter a valid alpha ID.")
		return
	}

	fmt.Printf("\nSubmitting alpha: %s\n", alphaId)
	if state.sub.SubmitAlpha(alphaId) {
		fmt.Printf("Alpha %s submitted successfully!\n", alphaId)
	} else {
		fmt.Printf("Alpha %s failed to submit.\n", alphaId)
	}
}

func (state *menuState) checkAlphaInfo() {
	alphaId := state.readLine("\nEnter alpha ID to check: ")
	if alphaId == "" {
		fmt.Println("Please enter a valid alpha ID.")
		return
	}

	fmt.Printf("\nChecking alpha: %s\n", alphaId)
	alpha, err := state.client.GetAlpha(alphaId)
	if err != nil {
		fmt.Printf("Alpha %s could not be fetched: %s\n", alphaId, err.Error())
		return
	}

	fmt.Println("\nAlpha Details:")
	fmt.Printf("   ID: %s\n", alpha.Id)
	fmt.Printf("   Type: %s\n", orNA(alpha.Type))
	fmt.Printf("   Status: %s\n", orNA(alpha.Status))
	if len(alpha.Settings) > 0 {
		fmt.Println("   Has settings: Yes")
	}
	if len(alpha.Regular) > 0 {
		fmt.Println("   Has regular data: Yes")
	}
	printPerformance(alpha.Is)

	recordsets, err := state.client.GetRecordsets(alphaId)
	if err != nil {
		fmt.Printf("Could not fetch record sets: %s\n", err.Error())
		return
	}
	var listing struct {
		Count int64 `json:"count"`
	}
	if err = json.Unmarshal(recordsets, &listing); err == nil {
		fmt.Printf("   Record sets available: %d\n", listing.Count)
	}
}

func printPerformance(performance viewer.Performance) {
	metric := func(name string, value *float64) {
		if value != nil {
			fmt.Printf("   %s: %g\n", name, *value)
		}
	}
	metric("Fitness", performance.Fitness)
	metric("Sharpe", performance.Sharpe)
	metric("Turnover", performance.Turnover)
	metric("Returns", performance.Returns)
	metric("Margin", performance.Margin)
	if performance.LongCount != nil && performance.ShortCount != nil {
		fmt.Printf("   Long/Short: %d/%d\n", *performance.LongCount, *performance.ShortCount)
	}
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
