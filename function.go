package messenger

import (
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
)

const (
	ErrorMsgLogField  = "errorMsg"
	bodyLogField      = "body"
	userIDLogField    = "userID"
	recipientLogField = "recipient"
	skillLogField     = "skill"

	gcloudFuncSourceDir = "serverless_function_source_code"
)

func init() {
	functions.HTTP("Send", Send)
	functions.HTTP("Assessment", Assessment)
	fixDir()
}

// in GCP Functions, source code is placed in a directory named
// "serverless_function_source_code"; need to change the dir to get access
// to the prompt template file
func fixDir() {
	fileInfo, err := os.Stat(gcloudFuncSourceDir)
	if err == nil && fileInfo.IsDir() {
		_ = os.Chdir(gcloudFuncSourceDir)
	}
}
