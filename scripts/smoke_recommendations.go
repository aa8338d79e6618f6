package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
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

	client := &http.Client{} // No timeout: generation can take a while
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var parsed map[string]interface{}
	json.Unmarshal(body, &parsed)
	if data, ok := parsed["data"].(map[string]interface{}); ok {
		return data
	}
	return nil
}

func main() {
	userToken := os.Getenv("SMOKE_USER_TOKEN")
	if userToken == "" {
		color.Red("SMOKE_USER_TOKEN is not set")
		os.Exit(1)
	}

	color.Cyan("🚀 Starting Recommendation Pipeline Smoke Test\n")

	// 1. Search catalog (public)
	color.Yellow("\n[PUBLIC] 1. Search Products: 'vinyl kitchen'")
	resp, body, err := sendRequest("GET", "/products/search?keyword=vinyl+kitchen", "", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var searchResp map[string]interface{}
	json.Unmarshal(body, &searchResp)
	prettyPrint(searchResp)

	// 2. Create recommendation (new thread)
	color.Yellow("\n[USER] 2. Create Recommendation: kitchen flooring")
	createReq := map[string]interface{}{
		"message":      "I'm renovating my kitchen and need waterproof flooring under $50 per box.",
		"type":         "interior_design",
		"project_name": "Kitchen Reno",
	}
	resp, body, err = sendRequest("POST", "/recommendations/create", userToken, createReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var threadID string
	if data := dataField(body); data != nil {
		fmt.Printf("Reply: %s\n", data["response"])
		if id, ok := data["recommendation_id"].(string); ok {
			threadID = id
			fmt.Printf("Thread ID: %s\n", threadID)
		}
		if products, ok := data["recommended_products"].([]interface{}); ok {
			fmt.Printf("Recommended products: %d\n", len(products))
		}
	}

	if threadID == "" {
		color.Red("No thread id returned, aborting")
		os.Exit(1)
	}

	// 3. Follow-up on the same thread
	color.Yellow("\n[USER] 3. Follow-up: narrow to dark colors")
	followReq := map[string]interface{}{
		"message":           "Can you narrow that down to dark colors only?",
		"type":              "interior_design",
		"recommendation_id": threadID,
	}
	resp, body, err = sendRequest("POST", "/recommendations/create", userToken, followReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			fmt.Printf("Reply: %s\n", data["response"])
			if hist, ok := data["conversation_history"].([]interface{}); ok {
				fmt.Printf("History length: %d\n", len(hist))
			}
		}
	}

	// 4. Thread detail
	color.Yellow("\n[USER] 4. Show Thread Detail")
	resp, body, err = sendRequest("GET", "/recommendations/"+threadID, userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var detailResp map[string]interface{}
		json.Unmarshal(body, &detailResp)
		prettyPrint(detailResp)
	}

	// 5. List user threads
	color.Yellow("\n[USER] 5. List Threads")
	resp, body, err = sendRequest("GET", "/recommendations/user?page=1&page_size=10", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var listResp map[string]interface{}
		json.Unmarshal(body, &listResp)
		prettyPrint(listResp)
	}

	// 6. Cleanup: soft-delete the thread
	color.Yellow("\n[USER] 6. Cleanup: Delete Thread")
	resp, body, err = sendRequest("DELETE", "/recommendations/"+threadID, userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var deleteResp map[string]interface{}
		json.Unmarshal(body, &deleteResp)
		prettyPrint(deleteResp)
	}

	color.Cyan("\n✅ Smoke Test Complete")
}
