package stage

import (
	"sort"
	"testing"

	bcErrors "github.com/appship-labs/appship/pkg/build/errors"
	"github.com/appship-labs/appship/pkg/build/reader"
)

func TestMultipleStages(t *testing.T) {
	commands, err := reader.ReadFromBytes([]byte(recipeMultiStage))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	scs, errs := ReadStages(commands)
	if len(errs) > 0 {
		t.Fatal("Stages reader returned errors", errs)
	}
	pss := scs.All()
	if len(pss) != 2 {
		t.Fatal("Expected 2 processable stages")
	}

	named := scs.NamedStage("builder")
	if named == nil {
		t.Fatal("Expected builder stage to exist in parsed stages")
	}
	if len(named.DependsOn()) > 0 {
		t.Fatal("Expected named scope to not depend on other stages")
	}

	if scs.NamedStage("non-existing") != nil {
		t.Fatal("Expected non-existing stage to not exist in parsed stages")
	}

	unnamed := scs.Unnamed()
	if len(unnamed) != 1 {
		t.Fatal("Expected exactly 1 unnamed scope")
	}
	mainScope := unnamed[0]
	expectedDependsOn := []string{"builder"}
	if !stringArraysTheSame(mainScope.DependsOn(), expectedDependsOn) {
		t.Fatalf("Expected %+v depend on but received %+v", expectedDependsOn, mainScope.DependsOn())
	}
}

func TestSingleLinearStage(t *testing.T) {
	commands, err := reader.ReadFromBytes([]byte(recipeLinear))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	scs, errs := ReadStages(commands)
	if len(errs) > 0 {
		t.Fatal("Stages reader returned errors", errs)
	}
	if len(scs.Named()) != 0 {
		t.Fatal("Expected no named stages")
	}
	unnamed := scs.Unnamed()
	if len(unnamed) != 1 {
		t.Fatal("Expected exactly 1 unnamed stage")
	}
	if !unnamed[0].IsValid() {
		t.Fatal("Expected the unnamed stage to carry a valid FROM")
	}
}

func TestRequireSingleUnnamed(t *testing.T) {
	commands, err := reader.ReadFromBytes([]byte(recipeLinear))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	scs, _ := ReadStages(commands)
	mainStage, err := RequireSingleUnnamed(scs)
	if err != nil {
		t.Fatal("Expected the linear recipe layout to be accepted", err)
	}
	if !mainStage.IsValid() {
		t.Fatal("Expected the unnamed stage to carry a valid FROM")
	}

	commands, err = reader.ReadFromBytes([]byte(recipeMultiStage))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	scs, _ = ReadStages(commands)
	if _, err := RequireSingleUnnamed(scs); err == nil {
		t.Fatal("Expected the multi stage layout to be rejected")
	} else if _, ok := err.(*bcErrors.UnsupportedStageLayoutError); !ok {
		t.Fatalf("Expected an unsupported stage layout error, got %+v", err)
	}
}

func stringArraysTheSame(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var recipeMultiStage = `FROM golang:1.15-alpine3.12 as builder
RUN apk add alpine-sdk ca-certificates

WORKDIR /go/src/github.com/example/service
COPY . .

ARG MAKE_TARGET=build
ARG GOOS=linux
ARG GOARCH=amd64
RUN make -e GOARCH=${GOARCH} -e GOOS=${GOOS} clean ${MAKE_TARGET}

FROM alpine:3.12
RUN apk add --no-cache ca-certificates

COPY --from=builder /go/src/github.com/example/service/build /opt/service/bin
ENTRYPOINT ["/opt/service/bin/service"]
CMD ["--help"]
`

var recipeLinear = `FROM python:3.8-slim
RUN apt-get update && apt-get install -y libgeos-dev
RUN pip install pandas sqlalchemy
ENV PORT=8080
COPY ./app /app
`
