package generateresponse

import "chat-assistant/internal/models"

type Input struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type Output struct {
	Response models.ChatResponse `json:"response"`
}
