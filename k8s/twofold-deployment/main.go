package main

import (
	"fmt"
	"os"

	appsv1 "github.com/pulumi/pulumi-kubernetes/sdk/v3/go/kubernetes/apps/v1"
	corev1 "github.com/pulumi/pulumi-kubernetes/sdk/v3/go/kubernetes/core/v1"
	metav1 "github.com/pulumi/pulumi-kubernetes/sdk/v3/go/kubernetes/meta/v1"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const serverPort = 1337

func main() {
	deploymentName := "twofold"
	namespace := deploymentName
	version := os.Getenv("TWOFOLD_VERSION")
	if version == "" {
		version = "latest"
	}
	pulumi.Run(func(ctx *pulumi.Context) error {

		appLabels := pulumi.StringMap{
			"app":     pulumi.String(deploymentName),
			"version": pulumi.String(version),
		}

		md := &metav1.ObjectMetaArgs{
			Labels:    appLabels,
			Namespace: pulumi.StringPtr(namespace),
			Name:      pulumi.StringPtr(deploymentName),
		}

		svc, err := corev1.NewService(ctx, deploymentName, &corev1.ServiceArgs{
			Metadata: md,
			Spec: corev1.ServiceSpecArgs{
				Ports: corev1.ServicePortArray{
					corev1.ServicePortArgs{
						TargetPort: pulumi.Int(serverPort),
						Port:       pulumi.Int(80),
					},
				},
				Selector: appLabels,
			},
		})
		if err != nil {
			return err
		}

		ctx.Export("service name", svc.Metadata.Elem().Name())

		probe := &corev1.ProbeArgs{
			HttpGet: &corev1.HTTPGetActionArgs{
				Path: pulumi.String("/healthz"),
				Port: pulumi.Int(serverPort),
			},
		}

		deployment, err := appsv1.NewDeployment(ctx, deploymentName, &appsv1.DeploymentArgs{
			Metadata: md,
			Spec: appsv1.DeploymentSpecArgs{
				Replicas: pulumi.Int(2),
				Selector: &metav1.LabelSelectorArgs{
					MatchLabels: appLabels,
				},
				Template: &corev1.PodTemplateSpecArgs{
					Metadata: &metav1.ObjectMetaArgs{
						Labels: appLabels,
					},
					Spec: &corev1.PodSpecArgs{
						Containers: corev1.ContainerArray{
							corev1.ContainerArgs{
								Name: pulumi.String(deploymentName),
								Args: pulumi.StringArray{
									pulumi.String("/twofold-server"), pulumi.String("-p"), pulumi.String(fmt.Sprint(serverPort)),
								},
								Env: corev1.EnvVarArray{
									corev1.EnvVarArgs{
										Name:  pulumi.String("TWOFOLD_LOG_LEVEL"),
										Value: pulumi.String("info"),
									},
								},
								ImagePullPolicy: pulumi.String("Always"),
								Image:           pulumi.String(fmt.Sprintf("registry.gitlab.com/pnathan/twofold:%s", version)),
								Ports: corev1.ContainerPortArray{
									corev1.ContainerPortArgs{
										ContainerPort: pulumi.Int(serverPort),
									},
								},
								LivenessProbe:  probe,
								ReadinessProbe: probe,
							},
						},
					},
				},
			},
		})
		if err != nil {
			return err
		}

		ctx.Export("deployment name", deployment.Metadata.Elem().Name())

		return nil
	})
}
