package cli

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nexus-api/internal/config"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	require.ElementsMatch(t, []string{"serve", "migrate", "seed"}, names)
}

func TestBuildTutorRequiresProviderKey(t *testing.T) {
	_, _, err := buildTutor(context.Background(), config.Config{AIProvider: "openai"}, zerolog.Nop())
	require.Error(t, err)

	_, _, err = buildTutor(context.Background(), config.Config{AIProvider: "gemini"}, zerolog.Nop())
	require.Error(t, err)
}

func TestBuildTutorOpenAI(t *testing.T) {
	tutor, closer, err := buildTutor(context.Background(), config.Config{AIProvider: "openai", OpenAIAPIKey: "key"}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, tutor)
	closer()
}
