package passes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"github.com/dmitrijs2005/boardingpass/internal/common"
)

const (
	baseAsset       = "base.png"
	defaultTemplate = "default"

	maxAvatarBytes = 5 << 20
	// textScale enlarges the 13px bitmap face to roughly 48px.
	textScale = 4
)

var (
	avatarOffset = image.Pt(570, 400)
	textOffset   = image.Pt(965, 470)
)

// Renderer composes passes. It is safe for concurrent use.
type Renderer struct {
	assets AssetStore
	http   *http.Client
	face   font.Face
}

func NewRenderer(assets AssetStore, hc *http.Client) *Renderer {
	return &Renderer{assets: assets, http: hc, face: basicfont.Face7x13}
}

// Render returns the pass for username as PNG bytes.
func (r *Renderer) Render(ctx context.Context, username, project, avatarURL string) ([]byte, error) {
	base, err := r.loadAsset(ctx, baseAsset)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(base.Bounds())
	draw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, draw.Src)

	avatar, err := r.fetchAvatar(ctx, avatarURL)
	if err != nil {
		return nil, err
	}
	draw.Draw(canvas, avatar.Bounds().Sub(avatar.Bounds().Min).Add(avatarOffset), avatar, avatar.Bounds().Min, draw.Over)

	tmpl, err := r.template(ctx, project)
	if err != nil {
		return nil, err
	}
	draw.Draw(canvas, canvas.Bounds(), tmpl, tmpl.Bounds().Min, draw.Over)

	r.drawText(canvas, strings.ToUpper(username), textOffset)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode pass: %w", err)
	}
	return buf.Bytes(), nil
}

// template loads templates/<project>.png, falling back to the default one.
func (r *Renderer) template(ctx context.Context, project string) (image.Image, error) {
	if project != "" && !strings.ContainsAny(project, "/\\.") {
		img, err := r.loadAsset(ctx, "templates/"+project+".png")
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
	}
	return r.loadAsset(ctx, "templates/"+defaultTemplate+".png")
}

func (r *Renderer) loadAsset(ctx context.Context, name string) (image.Image, error) {
	rc, err := r.assets.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

func (r *Renderer) fetchAvatar(ctx context.Context, avatarURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, avatarURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch avatar: %w", common.ErrorUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch avatar: status %d", common.ErrorUpstream, resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: decode avatar: %w", common.ErrorUpstream, err)
	}
	return img, nil
}

// drawText renders s in white with its top-left corner at at.
func (r *Renderer) drawText(dst draw.Image, s string, at image.Point) {
	if s == "" {
		return
	}

	width := font.MeasureString(r.face, s).Ceil()
	height := r.face.Metrics().Height.Ceil()
	small := image.NewRGBA(image.Rect(0, 0, width, height))

	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.White),
		Face: r.face,
		Dot:  fixed.P(0, r.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	target := image.Rect(at.X, at.Y, at.X+width*textScale, at.Y+height*textScale)
	xdraw.NearestNeighbor.Scale(dst, target, small, small.Bounds(), xdraw.Over, nil)
}
