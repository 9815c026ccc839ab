package genflow

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/compose"

	"autoblog/internal/affiliate"
	"autoblog/internal/ai"
	"autoblog/internal/models"
)

type GraphInput struct {
	Article   models.ScrapedArticle
	LLM       *ai.Client
	Affiliate affiliate.Config
}

type GraphOutput struct {
	Title    string
	Content  string
	Summary  string
	Keywords []string
	Links    []affiliate.Link
}

type draftState struct {
	Article   models.ScrapedArticle
	Post      ai.BlogPost
	LLM       *ai.Client
	Affiliate affiliate.Config
}

// Generator runs the draft pipeline as a compiled graph:
// writer (blog post from headline) -> monetizer (affiliate candidates and
// outbound URLs) -> formatter (clamped insertion into the body).
type Generator struct {
	runnable compose.Runnable[GraphInput, GraphOutput]
}

func NewGenerator() (*Generator, error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()
	if err := graph.AddLambdaNode("writer", compose.InvokableLambda(writerNode)); err != nil {
		return nil, err
	}
	if err := graph.AddLambdaNode("monetizer", compose.InvokableLambda(monetizerNode)); err != nil {
		return nil, err
	}
	if err := graph.AddLambdaNode("formatter", compose.InvokableLambda(formatterNode)); err != nil {
		return nil, err
	}
	if err := graph.AddEdge(compose.START, "writer"); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("writer", "monetizer"); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("monetizer", "formatter"); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("formatter", compose.END); err != nil {
		return nil, err
	}

	runnable, err := graph.Compile(context.Background(), compose.WithGraphName("draft_pipeline"))
	if err != nil {
		return nil, err
	}

	return &Generator{runnable: runnable}, nil
}

func (g *Generator) Generate(ctx context.Context, input GraphInput) (GraphOutput, error) {
	if g == nil || g.runnable == nil {
		return GraphOutput{}, errors.New("generator graph not initialized")
	}
	return g.runnable.Invoke(ctx, input)
}

func writerNode(ctx context.Context, input GraphInput) (draftState, error) {
	if input.LLM == nil || !input.LLM.Enabled() {
		return draftState{}, errors.New("llm not configured")
	}

	post, err := input.LLM.GenerateBlogPost(ctx, ai.BlogInput{
		Title:       input.Article.Title,
		Description: input.Article.Description,
		URL:         input.Article.URL,
	})
	if err != nil {
		return draftState{}, err
	}

	// A draft always carries a usable title, even when the model output
	// degraded to empty fields.
	if post.Title == "" {
		post.Title = input.Article.Title
	}

	return draftState{
		Article:   input.Article,
		Post:      post,
		LLM:       input.LLM,
		Affiliate: input.Affiliate,
	}, nil
}

func monetizerNode(ctx context.Context, state draftState) (GraphOutput, error) {
	out := GraphOutput{
		Title:    state.Post.Title,
		Content:  state.Post.Content,
		Summary:  state.Post.Summary,
		Keywords: state.Post.Keywords,
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}

	candidates, err := state.LLM.SuggestProducts(ctx, state.Post.Content, state.Post.Keywords)
	if err != nil {
		return GraphOutput{}, err
	}

	links := make([]affiliate.Link, 0, len(candidates))
	for _, c := range candidates {
		links = append(links, affiliate.Link{
			ProductName: c.ProductName,
			Provider:    c.Provider,
			URL:         state.Affiliate.BuildURL(c.ProductName, c.Provider),
			Position:    *c.Position,
		})
	}
	out.Links = links
	return out, nil
}

func formatterNode(ctx context.Context, out GraphOutput) (GraphOutput, error) {
	out.Title = strings.TrimSpace(out.Title)
	out.Summary = strings.TrimSpace(out.Summary)
	out.Links = affiliate.ClampPositions(out.Content, out.Links)
	out.Content = affiliate.Insert(out.Content, out.Links)
	return out, nil
}
