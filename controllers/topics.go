package controllers

import (
	"net/http"
	"strconv"
	"strings"

	models "fibbler/models/postgres"
	"fibbler/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Lists all active topics
// @Tags topics
// @Produce json
// @Success 200 {array} object{id=integer,title=string}
// @Failure 500 {object} object{error=string}
// @Router /topics [get]
func ListTopics(db *gorm.DB) gin.HandlerFunc {
	prompts := repository.NewPromptRepository(db)
	return func(c *gin.Context) {
		topics, err := prompts.ListActiveTopics()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching topics"})
			return
		}

		list := make([]gin.H, len(topics))
		for i, t := range topics {
			list[i] = gin.H{"id": t.ID, "title": t.Title}
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary Creates a topic
// @Tags topics
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param title formData string true "Topic title"
// @Success 201 {object} object{id=integer}
// @Failure 400 {object} object{error=string}
// @Router /auth/topics [post]
// @Security ApiKeyAuth
func CreateTopic(db *gorm.DB) gin.HandlerFunc {
	prompts := repository.NewPromptRepository(db)
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}

		title := strings.TrimSpace(c.PostForm("title"))
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}

		topic := models.Topic{Title: title, IsActive: true}
		if err := prompts.CreateTopic(&topic); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating topic"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": topic.ID})
	}
}

// @Summary Creates a prompt under a topic
// @Tags topics
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param topic_id path integer true "Id of the topic"
// @Param content formData string true "Prompt text"
// @Param correct_answer formData string true "The true answer"
// @Success 201 {object} object{id=integer}
// @Failure 400 {object} object{error=string}
// @Router /auth/topics/{topic_id}/prompts [post]
// @Security ApiKeyAuth
func CreatePrompt(db *gorm.DB) gin.HandlerFunc {
	prompts := repository.NewPromptRepository(db)
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}

		topicID, err := strconv.ParseUint(c.Param("topic_id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic id"})
			return
		}
		content := strings.TrimSpace(c.PostForm("content"))
		correct := strings.TrimSpace(c.PostForm("correct_answer"))
		if content == "" || correct == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		prompt := models.Prompt{
			TopicID:       uint(topicID),
			Content:       content,
			CorrectAnswer: correct,
			IsActive:      true,
		}
		if err := prompts.CreatePrompt(&prompt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating prompt"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": prompt.ID})
	}
}
