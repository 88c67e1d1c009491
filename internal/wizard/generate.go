package wizard

import (
	"bytes"
	"text/template"
)

// EnvAnswers holds all user responses from the wizard.
type EnvAnswers struct {
	Subdomain    string
	Domain       string
	DefaultEmail string
	Timezone     string
	ScriptsDir   string
	SecretsDir   string
}

const envTemplate = `# lego environment
# Interpolated into the compose descriptor by 'lego up'.

# Public hostname: https://{{ .Subdomain }}.{{ .Domain }}/
SUBDOMAIN={{ .Subdomain }}
DOMAIN_NAME={{ .Domain }}

# Timezone for schedules inside n8n
GENERIC_TIMEZONE={{ .Timezone }}

# Mailbox the gmail service reads and drafts as (domain-wide delegation)
DEFAULT_EMAIL={{ .DefaultEmail }}

# Host directory mounted into n8n at /data/py
PYSCRIPT_DIR={{ .ScriptsDir }}

# Holds service.json and credentials.json for the gmail service
SECRETS_DIR={{ .SecretsDir }}
`

// DefaultDescriptor is the compose descriptor 'lego init' scaffolds when
// none exists. It matches the deploy/docker-compose.yml shipped with the
// repository.
const DefaultDescriptor = `services:
  n8n:
    image: docker.n8n.io/n8nio/n8n
    restart: always
    ports:
      - "5678:5678"
    environment:
      - N8N_HOST=${SUBDOMAIN}.${DOMAIN_NAME}
      - N8N_PORT=5678
      - N8N_PROTOCOL=https
      - NODE_ENV=production
      - WEBHOOK_URL=https://${SUBDOMAIN}.${DOMAIN_NAME}/
      - GENERIC_TIMEZONE=${GENERIC_TIMEZONE}
    volumes:
      - n8n_data:/home/node/.n8n
      - ${PYSCRIPT_DIR}:/data/py
    networks:
      - automation

  ticket:
    build:
      context: ..
      dockerfile: deploy/ticket/Dockerfile
    ports:
      - "8000:8000"
    environment:
      - WEBHOOK_URL=http://n8n:5678/webhook/ticket-upload
    networks:
      - automation
    depends_on:
      - n8n

  gmail:
    build:
      context: ..
      dockerfile: deploy/gmail/Dockerfile
    ports:
      - "8001:8001"
    environment:
      - SECRETS_DIR=/app/secrets
      - GOOGLE_SERVICE_CREDENTIALS=/app/secrets/service.json
      - GOOGLE_AUTH_CREDENTIALS=/app/secrets/credentials.json
      - DEFAULT_EMAIL=${DEFAULT_EMAIL}
      - GENERIC_TIMEZONE=${GENERIC_TIMEZONE}
    volumes:
      - ${SECRETS_DIR}:/app/secrets
    networks:
      - automation
    depends_on:
      - n8n

volumes:
  n8n_data:
    external: true

networks:
  automation:
    driver: bridge
`

// GenerateEnv renders the .env file from wizard answers.
func GenerateEnv(answers EnvAnswers) (string, error) {
	// Set defaults
	if answers.Timezone == "" {
		answers.Timezone = "Europe/Brussels"
	}
	if answers.ScriptsDir == "" {
		answers.ScriptsDir = "./scripts"
	}
	if answers.SecretsDir == "" {
		answers.SecretsDir = "./secrets"
	}

	tmpl, err := template.New("env").Parse(envTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", err
	}

	return buf.String(), nil
}
