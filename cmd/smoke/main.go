package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// End-to-end smoke run against a locally running server: register, login,
// create a workspace and chat, stream one agent turn, then read the
// transcript back.

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func extract(body []byte, path ...string) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	cur := parsed
	for i, key := range path {
		if i == len(path)-1 {
			s, _ := cur[key].(string)
			return s
		}
		next, ok := cur[key].(map[string]interface{})
		if !ok {
			return ""
		}
		cur = next
	}
	return ""
}

func main() {
	color.Cyan("Starting chat API smoke run\n")

	email := fmt.Sprintf("smoke-%d@example.com", time.Now().Unix())

	color.Yellow("\n1. Register")
	resp, body, err := sendRequest("POST", "/auth/register", "", map[string]string{
		"name":     "Smoke Tester",
		"email":    email,
		"password": "smoke-password-1",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	color.Yellow("\n2. Login")
	resp, body, err = sendRequest("POST", "/auth/login", "", map[string]string{
		"email":    email,
		"password": "smoke-password-1",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	token := extract(body, "data", "token")
	if token == "" {
		color.Red("No token in login response")
		os.Exit(1)
	}

	color.Yellow("\n3. Create workspace")
	resp, body, err = sendRequest("POST", "/workspace/v1", token, map[string]string{"name": "Smoke Workspace"})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	workspaceId := extract(body, "data", "id")

	color.Yellow("\n4. Create chat")
	resp, body, err = sendRequest("POST", "/chat/v1", token, map[string]string{"workspace_id": workspaceId})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	chatId := extract(body, "data", "id")

	color.Yellow("\n5. Stream a turn")
	if err := streamTurn(token, chatId); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	color.Yellow("\n6. Read transcript")
	resp, body, err = sendRequest("GET", "/chat/v1/"+chatId+"/messages", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var messages map[string]interface{}
	json.Unmarshal(body, &messages)
	prettyPrint(messages)

	color.Cyan("\nSmoke run complete")
}

func streamTurn(token, chatId string) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"chat_id": chatId,
		"messages": []map[string]string{
			{"role": "user", "content": "What is the latest Go release?"},
		},
	})

	req, err := http.NewRequest("POST", baseURL+"/chat/v1/stream", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	color.Green("Status: %s", resp.Status)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame map[string]interface{}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			continue
		}
		switch frame["type"] {
		case "text-delta":
			fmt.Print(frame["text"])
		case "tool-call-start":
			color.Magenta("\n[tool: %v]", frame["tool_name"])
		case "finish":
			fmt.Println()
			color.Green("turn finished")
		case "error":
			fmt.Println()
			color.Red("turn failed: %v", frame["message"])
		}
	}
	return scanner.Err()
}
